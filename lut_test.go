package glyphreel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func threeGlyphProfile() *FontProfile {
	return &FontProfile{
		Font: FontIdentity{Name: "Three"},
		Entries: []ProfileEntry{
			{Codepoint: '#', Brightness: 0.9},
			{Codepoint: ' ', Brightness: 0},
			{Codepoint: '.', Brightness: 0.2},
		},
	}
}

func TestBuildLUTThreeGlyphs(t *testing.T) {
	lut, err := BuildLUT(threeGlyphProfile(), AllChars())
	if err != nil {
		t.Fatalf("BuildLUT failed: %v", err)
	}
	tests := []struct {
		level uint8
		want  rune
	}{
		{0, ' '},
		{1, '.'},
		{51, '.'},
		{52, '#'},
		{229, '#'},
		{230, '#'},
		{255, '#'},
	}
	for _, tt := range tests {
		if got := lut.Rune(tt.level); got != tt.want {
			t.Errorf("LUT[%d]: expected %q, got %q", tt.level, tt.want, got)
		}
	}
	if diff := cmp.Diff([]rune{' ', '.', '#'}, lut.Codepoints()); diff != "" {
		t.Errorf("Slots mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLUTClampsToBrightest(t *testing.T) {
	p := &FontProfile{Entries: []ProfileEntry{
		{Codepoint: 'a', Brightness: 0.1},
		{Codepoint: 'b', Brightness: 0.3},
	}}
	lut, err := BuildLUT(p, AllChars())
	if err != nil {
		t.Fatal(err)
	}
	if lut.Rune(255) != 'b' || lut.Rune(200) != 'b' {
		t.Errorf("Levels brighter than every glyph should clamp to 'b', got %q and %q",
			lut.Rune(255), lut.Rune(200))
	}
	if lut.Rank(255) != 1 {
		t.Errorf("Expected rank 1, got %d", lut.Rank(255))
	}
}

func TestBuildLUTMonotonic(t *testing.T) {
	f := testFont(t)
	p, _, err := BuildProfile(t.Context(), f, 16)
	if err != nil {
		t.Fatalf("BuildProfile failed: %v", err)
	}
	for _, cs := range []Charset{AllChars(), NewCharset([]rune(Ramp)...), NewCharset(Presets["ascii"]...)} {
		lut, err := BuildLUT(p, cs)
		if err != nil {
			t.Fatalf("BuildLUT failed: %v", err)
		}
		for i := 1; i < len(lut.Ranked); i++ {
			if lut.Ranked[i].Brightness < lut.Ranked[i-1].Brightness {
				t.Fatalf("Ranked glyphs not sorted at %d", i)
			}
		}
		for i := 1; i < LUTSize; i++ {
			if lut.Rank(uint8(i)) < lut.Rank(uint8(i-1)) {
				t.Fatalf("Rank decreases at level %d", i)
			}
			if lut.Table[i] < lut.Table[i-1] {
				t.Fatalf("Slot decreases at level %d", i)
			}
		}
		for _, e := range lut.Ranked {
			if !cs.Contains(e.Codepoint) {
				t.Errorf("U+%04X passed a charset that excludes it", e.Codepoint)
			}
		}

		again, err := BuildLUT(p, cs)
		if err != nil {
			t.Fatal(err)
		}
		if again.Table != lut.Table {
			t.Error("Rebuilding from the same inputs should give an identical table")
		}
	}
}

func TestBuildLUTTieBreak(t *testing.T) {
	p := &FontProfile{Entries: []ProfileEntry{
		{Codepoint: 'z', Brightness: 0.5},
		{Codepoint: 'a', Brightness: 0.5},
		{Codepoint: 'm', Brightness: 0.5},
	}}
	lut, err := BuildLUT(p, AllChars())
	if err != nil {
		t.Fatal(err)
	}
	want := []ProfileEntry{{'a', 0.5}, {'m', 0.5}, {'z', 0.5}}
	if diff := cmp.Diff(want, lut.Ranked); diff != "" {
		t.Errorf("Ranked mismatch (-want +got):\n%s", diff)
	}
	// Up to 0.5 the lower bound is the lowest codepoint among equals.
	// Brighter targets have no glyph and clamp to the last ranked one.
	for i := 0; i < LUTSize; i++ {
		want := 'a'
		if float64(i)/255 > 0.5 {
			want = 'z'
		}
		if got := lut.Rune(uint8(i)); got != want {
			t.Fatalf("Level %d: expected %q, got %q", i, want, got)
		}
	}
	if len(lut.Slots) != 2 {
		t.Errorf("Expected two referenced slots, got %d", len(lut.Slots))
	}
}

func TestBuildLUTEmptyCharset(t *testing.T) {
	_, err := BuildLUT(threeGlyphProfile(), NewCharset(Presets["digits"]...))
	if !errors.Is(err, ErrEmptyCharset) {
		t.Errorf("Expected ErrEmptyCharset, got %v", err)
	}
	_, err = BuildLUT(&FontProfile{}, AllChars())
	if !errors.Is(err, ErrEmptyCharset) {
		t.Errorf("Expected ErrEmptyCharset for an empty profile, got %v", err)
	}
}

func TestBuildLUTFilter(t *testing.T) {
	lut, err := BuildLUT(threeGlyphProfile(), NewCharset(' ', '#'))
	if err != nil {
		t.Fatal(err)
	}
	if lut.Rune(51) != '#' {
		t.Errorf("With '.' filtered out, level 51 should map to '#', got %q", lut.Rune(51))
	}
	if len(lut.Ranked) != 2 {
		t.Errorf("Expected 2 ranked glyphs, got %d", len(lut.Ranked))
	}
}
