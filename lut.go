package glyphreel

import (
	"fmt"
	"sort"
)

// LUTSize is the number of intensity levels a lookup table maps.
const LUTSize = 256

// LUT quantizes 8-bit intensities to glyph atlas slots.
//
// Ranked holds the filtered glyphs ordered by brightness, ties broken by
// codepoint. Slots holds the glyphs actually referenced by Table, in rank
// order, so Table is non-decreasing in both slot and rank.
type LUT struct {
	Ranked []ProfileEntry
	Slots  []ProfileEntry
	Table  [LUTSize]uint16

	ranks [LUTSize]int
}

// BuildLUT filters the profile through cs and builds the quantization
// table. Level i maps to the darkest glyph whose brightness is at least
// i/255, or to the brightest glyph when none is that bright.
func BuildLUT(p *FontProfile, cs Charset) (*LUT, error) {
	var ranked []ProfileEntry
	for _, e := range p.Entries {
		if cs.Contains(e.Codepoint) {
			ranked = append(ranked, e)
		}
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: font %q has none of the %d selected characters",
			ErrEmptyCharset, p.Font.Name, cs.Len())
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Brightness != ranked[j].Brightness {
			return ranked[i].Brightness < ranked[j].Brightness
		}
		return ranked[i].Codepoint < ranked[j].Codepoint
	})

	levels := make([]float64, len(ranked))
	for i, e := range ranked {
		levels[i] = e.Brightness
	}

	lut := &LUT{Ranked: ranked}
	prev := -1
	for i := 0; i < LUTSize; i++ {
		target := float64(i) / float64(LUTSize-1)
		rank := sort.SearchFloat64s(levels, target)
		if rank == len(levels) {
			rank = len(levels) - 1
		}
		if rank != prev {
			lut.Slots = append(lut.Slots, ranked[rank])
			prev = rank
		}
		lut.ranks[i] = rank
		lut.Table[i] = uint16(len(lut.Slots) - 1)
	}
	return lut, nil
}

// Rune returns the glyph chosen for an intensity level.
func (l *LUT) Rune(level uint8) rune {
	return l.Slots[l.Table[level]].Codepoint
}

// Rank returns the position in Ranked of the glyph chosen for level.
func (l *LUT) Rank(level uint8) int {
	return l.ranks[level]
}

// Codepoints returns the slot glyphs' codepoints in slot order.
func (l *LUT) Codepoints() []rune {
	out := make([]rune, len(l.Slots))
	for i, e := range l.Slots {
		out[i] = e.Codepoint
	}
	return out
}
