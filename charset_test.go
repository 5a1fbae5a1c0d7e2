package glyphreel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCharsetZeroValueAllowsAll(t *testing.T) {
	var cs Charset
	if !cs.AllowsAll() || !cs.Contains('中') || cs.Len() != -1 || cs.Runes() != nil {
		t.Error("The zero Charset should allow everything")
	}
	if NewCharset().Contains('a') {
		t.Error("An empty explicit charset should allow nothing")
	}
}

func TestPresets(t *testing.T) {
	tests := map[string]int{
		"ascii":     95,
		"extended":  224,
		"lowercase": 26,
		"uppercase": 26,
		"digits":    10,
		"symbols":   32,
		"hex":       22,
		"ramp":      10,
	}
	for name, want := range tests {
		if got := NewCharset(Presets[name]...).Len(); got != want {
			t.Errorf("Preset %s: expected %d runes, got %d", name, want, got)
		}
	}
	if len(Presets) != len(tests) {
		t.Errorf("Expected %d presets, got %d", len(tests), len(Presets))
	}
	names := PresetNames()
	if names[0] != "all" || len(names) != len(Presets)+1 {
		t.Errorf("Unexpected preset names %v", names)
	}
}

func TestParseCharsets(t *testing.T) {
	tests := []struct {
		name  string
		in    []string
		all   bool
		runes []rune
	}{
		{"none", nil, true, nil},
		{"blank", []string{"", " "}, true, nil},
		{"all", []string{"digits", "ALL"}, true, nil},
		{"single", []string{"digits"}, false, []rune("0123456789")},
		{"union", []string{"Digits", " hex "}, false, []rune("0123456789ABCDEFabcdef")},
		{"ramp", []string{"ramp"}, false, []rune(" #%*+-.:=@")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := ParseCharsets(tt.in)
			if err != nil {
				t.Fatalf("ParseCharsets failed: %v", err)
			}
			if cs.AllowsAll() != tt.all {
				t.Fatalf("Expected AllowsAll %v, got %v", tt.all, cs.AllowsAll())
			}
			if diff := cmp.Diff(tt.runes, cs.Runes()); diff != "" {
				t.Errorf("Runes mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := ParseCharsets([]string{"klingon"}); err == nil {
		t.Error("Expected an error for an unknown preset")
	}
}

func TestCharsetUnion(t *testing.T) {
	a, b := NewCharset('a', 'b'), NewCharset('b', 'c')
	u := a.Union(b)
	if diff := cmp.Diff([]rune("abc"), u.Runes()); diff != "" {
		t.Errorf("Union mismatch (-want +got):\n%s", diff)
	}
	if !a.Union(AllChars()).AllowsAll() {
		t.Error("Union with all should allow all")
	}
	if a.Len() != 2 {
		t.Error("Union should not modify its receiver")
	}
}
