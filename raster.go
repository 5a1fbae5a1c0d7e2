package glyphreel

import (
	"fmt"
	"image"
	"unicode"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/wbrown/glyphreel/imageutil"
)

const (
	// cellReference is measured to size the glyph cell.
	cellReference = '█' // FULL BLOCK
	// notdefProbe is never mapped by a font, so it renders as tofu.
	notdefProbe = '\U0010FFFF'
)

// RejectReason says why a codepoint was left out of the glyph set.
type RejectReason int

const (
	Accepted RejectReason = iota
	RejectNotPrintable
	RejectUnmapped
	RejectNegativeOrigin
	RejectOversize
	RejectDegenerate
	RejectTofu
	RejectRenderError
)

func (r RejectReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectNotPrintable:
		return "not printable"
	case RejectUnmapped:
		return "unmapped"
	case RejectNegativeOrigin:
		return "negative origin"
	case RejectOversize:
		return "exceeds cell"
	case RejectDegenerate:
		return "degenerate bounds"
	case RejectTofu:
		return "tofu"
	case RejectRenderError:
		return "render error"
	}
	return fmt.Sprintf("RejectReason(%d)", int(r))
}

// Rasterizer renders single codepoints of a font into cell-sized grayscale
// bitmaps, white glyph on black. A Rasterizer holds a freetype face and
// must not be used from more than one goroutine at a time.
type Rasterizer struct {
	font   *Font
	face   font.Face
	size   float64
	dot    fixed.Point26_6
	cell   image.Rectangle
	notdef *image.Gray
}

// NewRasterizer prepares a face of the given pixel size, measures the
// glyph cell and renders the tofu reference.
//
// The cell is the bounding box of U+2588 FULL BLOCK drawn with its
// ascender at the top edge. Fonts without a full block fall back to the
// advance of 'M' by the ascent plus descent.
func NewRasterizer(f *Font, size float64) (*Rasterizer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid render size %v", ErrFontLoad, size)
	}
	face := truetype.NewFace(f.tt, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	metrics := face.Metrics()
	r := &Rasterizer{
		font: f,
		face: face,
		size: size,
		dot:  fixed.Point26_6{X: 0, Y: fixed.I(metrics.Ascent.Ceil())},
	}

	cell, err := r.measureCell(metrics)
	if err != nil {
		return nil, err
	}
	r.cell = cell

	// Without a tofu reference the pixel comparison is simply skipped;
	// the coverage check still runs.
	if notdef, _, err := r.Draw(notdefProbe); err == nil {
		r.notdef = notdef
	}
	return r, nil
}

func (r *Rasterizer) measureCell(metrics font.Metrics) (image.Rectangle, error) {
	if r.font.HasGlyph(cellReference) {
		dr, _, _, _, ok := r.face.Glyph(r.dot, cellReference)
		if ok && dr.Max.X > 0 && dr.Max.Y > 0 {
			return image.Rect(0, 0, dr.Max.X, dr.Max.Y), nil
		}
	}
	adv, ok := r.face.GlyphAdvance('M')
	w, h := adv.Ceil(), (metrics.Ascent + metrics.Descent).Ceil()
	if !ok || w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: %s: cannot determine cell size",
			ErrFontLoad, r.font.Identity.Name)
	}
	return image.Rect(0, 0, w, h), nil
}

// CellSize returns the glyph cell dimensions in pixels.
func (r *Rasterizer) CellSize() (width, height int) {
	return r.cell.Dx(), r.cell.Dy()
}

// Size returns the render size in pixels.
func (r *Rasterizer) Size() float64 {
	return r.size
}

// Draw renders cp into a fresh cell-sized bitmap and returns the glyph's
// pixel bounds, which may lie partly outside the cell. Rendering failures,
// including panics from malformed outlines, are returned as errors
// wrapping ErrGlyphRejected.
func (r *Rasterizer) Draw(cp rune) (bitmap *image.Gray, bounds image.Rectangle, err error) {
	defer func() {
		if p := recover(); p != nil {
			bitmap, bounds = nil, image.Rectangle{}
			err = fmt.Errorf("%w: U+%04X: %v", ErrGlyphRejected, cp, p)
		}
	}()

	dr, mask, maskp, _, ok := r.face.Glyph(r.dot, cp)
	if !ok {
		return nil, image.Rectangle{}, fmt.Errorf("%w: U+%04X: glyph did not load",
			ErrGlyphRejected, cp)
	}
	bitmap = image.NewGray(r.cell)
	if !dr.Empty() {
		draw.DrawMask(bitmap, dr, image.White, image.Point{}, mask, maskp, draw.Over)
	}
	return bitmap, dr, nil
}

// Bitmap renders cp without applying the acceptance rules.
func (r *Rasterizer) Bitmap(cp rune) (*image.Gray, error) {
	bitmap, _, err := r.Draw(cp)
	return bitmap, err
}

// Classify renders cp and applies the acceptance rules in order. The
// bitmap is only returned for accepted codepoints.
func (r *Rasterizer) Classify(cp rune) (*image.Gray, RejectReason) {
	if !unicode.IsPrint(cp) {
		return nil, RejectNotPrintable
	}
	if !r.font.HasGlyph(cp) {
		return nil, RejectUnmapped
	}
	bitmap, dr, err := r.Draw(cp)
	switch {
	case err != nil:
		return nil, RejectRenderError
	case dr.Min.X < 0 || dr.Min.Y < 0:
		return nil, RejectNegativeOrigin
	case dr.Max.X > r.cell.Max.X || dr.Max.Y > r.cell.Max.Y:
		return nil, RejectOversize
	case dr.Empty():
		return nil, RejectDegenerate
	case r.notdef != nil && imageutil.Equal(bitmap, r.notdef):
		return nil, RejectTofu
	}
	return bitmap, Accepted
}
