package glyphreel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/wbrown/glyphreel/imageutil"
)

// profileDigits is the number of decimals kept for a brightness value.
// Rounding makes profiles byte-identical across runs on the same font.
const profileDigits = 4

var codepointKey = regexp.MustCompile(`^0x[0-9A-F]{6}$`)

// ProfileEntry is the persisted brightness of one accepted glyph.
type ProfileEntry struct {
	Codepoint  rune
	Brightness float64
}

// FontProfile is the brightness index of a font at one cell size.
// Entries are sorted by codepoint.
type FontProfile struct {
	Font       FontIdentity
	CellWidth  int
	CellHeight int
	Entries    []ProfileEntry
}

// Brightness returns the mean pixel value of a grayscale bitmap,
// normalized to [0,1].
func Brightness(bitmap *image.Gray) float64 {
	return imageutil.Mean(bitmap) / 255
}

// RoundBrightness rounds v to the precision stored in profile files.
func RoundBrightness(v float64) float64 {
	scale := math.Pow10(profileDigits)
	return math.Round(v*scale) / scale
}

// IndexGlyphs reduces each glyph to its rounded brightness.
func IndexGlyphs(id FontIdentity, cellWidth, cellHeight int, glyphs []Glyph) *FontProfile {
	p := &FontProfile{
		Font:       id,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		Entries:    make([]ProfileEntry, 0, len(glyphs)),
	}
	for _, g := range glyphs {
		p.Entries = append(p.Entries, ProfileEntry{
			Codepoint:  g.Codepoint,
			Brightness: RoundBrightness(g.Brightness()),
		})
	}
	sort.Slice(p.Entries, func(i, j int) bool {
		return p.Entries[i].Codepoint < p.Entries[j].Codepoint
	})
	return p
}

// Validate checks that every brightness is finite and within [0,1] and
// that no codepoint appears twice.
func (p *FontProfile) Validate() error {
	seen := make(map[rune]bool, len(p.Entries))
	for _, e := range p.Entries {
		if math.IsNaN(e.Brightness) || e.Brightness < 0 || e.Brightness > 1 {
			return fmt.Errorf("%w: %s: brightness %v out of range",
				ErrProfileIO, codepointString(e.Codepoint), e.Brightness)
		}
		if seen[e.Codepoint] {
			return fmt.Errorf("%w: %s: duplicate codepoint",
				ErrProfileIO, codepointString(e.Codepoint))
		}
		seen[e.Codepoint] = true
	}
	return nil
}

func codepointString(r rune) string {
	return fmt.Sprintf("0x%06X", r)
}

// encodeProfile writes the profile as a JSON object mapping 0xHHHHHH keys
// to brightness numbers with exactly four decimals.
func encodeProfile(w io.Writer, p *FontProfile) error {
	entries := make(map[string]json.Number, len(p.Entries))
	for _, e := range p.Entries {
		entries[codepointString(e.Codepoint)] = json.Number(
			strconv.FormatFloat(e.Brightness, 'f', profileDigits, 64))
	}
	// encoding/json sorts map keys, and the fixed-width keys sort in
	// codepoint order.
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// decodeProfile parses a profile file, rejecting malformed keys, values
// outside [0,1] and repeated keys.
func decodeProfile(data []byte) ([]ProfileEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrProfileIO)
	}
	var entries []ProfileEntry
	seen := make(map[rune]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProfileIO, err)
		}
		key, _ := tok.(string)
		if !codepointKey.MatchString(key) {
			return nil, fmt.Errorf("%w: bad codepoint key %q", ErrProfileIO, key)
		}
		cp, _ := strconv.ParseUint(key[2:], 16, 32)

		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrProfileIO, key, err)
		}
		v, err := num.Float64()
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v < 0 || v > 1 {
			return nil, fmt.Errorf("%w: %s: bad brightness %q", ErrProfileIO, key, num)
		}
		if seen[rune(cp)] {
			return nil, fmt.Errorf("%w: %s: duplicate codepoint", ErrProfileIO, key)
		}
		seen[rune(cp)] = true
		entries = append(entries, ProfileEntry{Codepoint: rune(cp), Brightness: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileIO, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Codepoint < entries[j].Codepoint
	})
	return entries, nil
}
