package glyphreel

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/golang/freetype/truetype"
	"github.com/zeebo/blake3"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/cmap"
)

// FontIdentity names a font for profile caching. Fingerprint is the hex
// BLAKE3-256 digest of the font file, so a font file replaced under the
// same family name gets a fresh profile.
type FontIdentity struct {
	Name        string
	Fingerprint string
}

// Font is a parsed TrueType font. The truetype outlines drive rendering;
// the sfnt cmap subtable lists the codepoints the font declares.
type Font struct {
	Identity FontIdentity

	tt   *truetype.Font
	cmap cmap.Subtable
}

// LoadFont reads and parses the font file at path. The family name stored
// in the font is used as its identity name, falling back to the file name.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
	}
	f, err := ParseFont(data, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Identity.Name == "" {
		f.Identity.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// ParseFont parses an in-memory TrueType font. A non-empty name overrides
// the family name recorded in the font. The bytes must not be modified
// while the font is in use.
func ParseFont(data []byte, name string) (*Font, error) {
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
	}

	info, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
	}
	subtable, err := info.CMapTable.GetBest()
	if err != nil {
		return nil, fmt.Errorf("%w: no usable cmap: %w", ErrFontLoad, err)
	}

	if name == "" {
		name = info.FamilyName
	}
	sum := blake3.Sum256(data)
	return &Font{
		Identity: FontIdentity{
			Name:        name,
			Fingerprint: hex.EncodeToString(sum[:]),
		},
		tt:   tt,
		cmap: subtable,
	}, nil
}

// Codepoints returns the codepoints mapped by the font's character map in
// ascending order. Only the declared range is walked; codepoints the font
// cannot have are never visited.
func (f *Font) Codepoints() []rune {
	low, high := f.cmap.CodeRange()
	lo, hi := rune(low), rune(high)
	if hi > utf8.MaxRune {
		hi = utf8.MaxRune
	}
	var out []rune
	for r := lo; r <= hi; r++ {
		if r >= 0xD800 && r <= 0xDFFF {
			continue // surrogates
		}
		if f.cmap.Lookup(r) != 0 {
			out = append(out, r)
		}
	}
	return out
}

// HasGlyph reports whether the font maps r to a real glyph rather than
// the .notdef placeholder.
func (f *Font) HasGlyph(r rune) bool {
	return f.tt.Index(r) != 0
}
