package glyphreel

import (
	"fmt"
	"image"
)

// GlyphSource renders cell-sized bitmaps. *Rasterizer implements it.
type GlyphSource interface {
	CellSize() (width, height int)
	Bitmap(cp rune) (*image.Gray, error)
}

// GlyphAtlas holds the bitmaps of the glyphs a LUT references, stacked
// top to bottom in slot order. Slot s occupies the rows
// [s*CellHeight, (s+1)*CellHeight) of Pix, which has stride CellWidth.
type GlyphAtlas struct {
	CellWidth  int
	CellHeight int
	Codepoints []rune
	Pix        []uint8
}

// NewGlyphAtlas renders every slot of lut. A glyph that no longer renders
// leaves its slot blank rather than failing the atlas.
func NewGlyphAtlas(src GlyphSource, lut *LUT) (*GlyphAtlas, error) {
	cw, ch := src.CellSize()
	if cw <= 0 || ch <= 0 {
		return nil, fmt.Errorf("invalid cell size %dx%d", cw, ch)
	}
	a := &GlyphAtlas{
		CellWidth:  cw,
		CellHeight: ch,
		Codepoints: lut.Codepoints(),
	}
	a.Pix = make([]uint8, len(a.Codepoints)*cw*ch)
	for s, cp := range a.Codepoints {
		bitmap, err := src.Bitmap(cp)
		if err != nil {
			continue
		}
		if sz := bitmap.Bounds().Size(); sz.X != cw || sz.Y != ch {
			return nil, fmt.Errorf("glyph U+%04X is %dx%d, want %dx%d",
				cp, sz.X, sz.Y, cw, ch)
		}
		dst := a.Slot(s)
		b := bitmap.Bounds()
		for y := 0; y < ch; y++ {
			off := bitmap.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst[y*cw:(y+1)*cw], bitmap.Pix[off:off+cw])
		}
	}
	return a, nil
}

// Len returns the number of slots.
func (a *GlyphAtlas) Len() int {
	return len(a.Codepoints)
}

// Slot returns the pixels of slot s, row-major with stride CellWidth.
func (a *GlyphAtlas) Slot(s int) []uint8 {
	n := a.CellWidth * a.CellHeight
	return a.Pix[s*n : (s+1)*n]
}

// Bitmap returns slot s as an image sharing the atlas pixels.
func (a *GlyphAtlas) Bitmap(s int) *image.Gray {
	return &image.Gray{
		Pix:    a.Slot(s),
		Stride: a.CellWidth,
		Rect:   image.Rect(0, 0, a.CellWidth, a.CellHeight),
	}
}
