package glyphreel

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the job settings that can be stored in a TOML file.
// Command-line flags override these values.
type Config struct {
	Font       string   `toml:"font"`
	FontName   string   `toml:"font_name"`
	FontSize   float64  `toml:"font_size"`
	ProfileDir string   `toml:"profile_dir"`
	Charsets   []string `toml:"charsets"`
	OutputFPS  float64  `toml:"output_fps"`
	Workers    int      `toml:"workers"`
	Audio      bool     `toml:"audio"`
	LogLevel   string   `toml:"log_level"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		FontSize:   DefaultFontSize,
		ProfileDir: defaultProfileDir(),
		Audio:      true,
		LogLevel:   "info",
	}
}

func defaultProfileDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "glyphreel", "profiles")
	}
	return "font_data"
}

// LoadConfig decodes the TOML file at path over DefaultConfig. Keys the
// file sets that Config does not know are returned so callers can warn
// about them.
func LoadConfig(path string) (Config, []string, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return cfg, unknown, nil
}

// FontSpec returns the font settings of the config.
func (c Config) FontSpec() FontSpec {
	return FontSpec{Path: c.Font, Name: c.FontName, Size: c.FontSize}
}

// Charset resolves the configured preset names.
func (c Config) Charset() (Charset, error) {
	return ParseCharsets(c.Charsets)
}
