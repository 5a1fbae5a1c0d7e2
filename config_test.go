package glyphreel

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glyphreel.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
font = "/usr/share/fonts/DejaVuSansMono.ttf"
font_size = 12
charsets = ["ascii", "ramp"]
output_fps = 12.5
audio = false
colour = "red"

[extra]
depth = 3
`)
	cfg, unknown, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Font != "/usr/share/fonts/DejaVuSansMono.ttf" || cfg.FontSize != 12 {
		t.Errorf("Unexpected font settings %+v", cfg)
	}
	if cfg.OutputFPS != 12.5 || cfg.Audio {
		t.Errorf("Expected output_fps 12.5 and audio off, got %+v", cfg)
	}
	if diff := cmp.Diff([]string{"ascii", "ramp"}, cfg.Charsets); diff != "" {
		t.Errorf("Charsets mismatch (-want +got):\n%s", diff)
	}

	// Unset keys keep their defaults.
	def := DefaultConfig()
	if cfg.LogLevel != def.LogLevel || cfg.ProfileDir != def.ProfileDir {
		t.Errorf("Expected defaults for unset keys, got %+v", cfg)
	}

	for _, key := range []string{"colour", "extra.depth"} {
		if !slices.Contains(unknown, key) {
			t.Errorf("Expected %q among unknown keys %v", key, unknown)
		}
	}
	if slices.Contains(unknown, "font") {
		t.Errorf("Known key reported as unknown: %v", unknown)
	}

	cs, err := cfg.Charset()
	if err != nil {
		t.Fatalf("Charset failed: %v", err)
	}
	if cs.Len() != 95 {
		t.Errorf("Expected ascii and ramp to union to 95 runes, got %d", cs.Len())
	}

	spec := cfg.FontSpec()
	if spec.Path != cfg.Font || spec.Size != 12 {
		t.Errorf("Unexpected font spec %+v", spec)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, _, err := LoadConfig(writeConfig(t, "font_size = \"big\"\n")); err == nil {
		t.Error("Expected error for wrong value type")
	}
	if _, _, err := LoadConfig(writeConfig(t, "font = \n")); err == nil {
		t.Error("Expected error for invalid TOML")
	}

	cfg, _, err := LoadConfig(writeConfig(t, `charsets = ["klingon"]`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if _, err := cfg.Charset(); err == nil {
		t.Error("Expected error for unknown charset name")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FontSize != DefaultFontSize || !cfg.Audio || cfg.ProfileDir == "" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	cs, err := cfg.Charset()
	if err != nil {
		t.Fatalf("Charset failed: %v", err)
	}
	if !cs.AllowsAll() {
		t.Error("Expected the default charset to allow everything")
	}
}

func TestFontSpecRenderSize(t *testing.T) {
	cfg, _, err := LoadConfig(writeConfig(t, "font_size = 0\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got := cfg.FontSpec().RenderSize(); got != DefaultFontSize {
		t.Errorf("Expected size 0 to resolve to %d, got %v", DefaultFontSize, got)
	}
	if got := (FontSpec{Size: 24}).RenderSize(); got != 24 {
		t.Errorf("Expected 24, got %v", got)
	}
}
