package glyphreel

import (
	"fmt"
	"image"

	"github.com/wbrown/glyphreel/imageutil"
)

// FrameTranscoder re-renders frames as grids of atlas glyphs. It only
// reads its atlas and LUT, so one transcoder may serve many goroutines.
type FrameTranscoder struct {
	atlas *GlyphAtlas
	lut   *LUT
}

// NewFrameTranscoder pairs an atlas with the LUT it was built from.
func NewFrameTranscoder(atlas *GlyphAtlas, lut *LUT) (*FrameTranscoder, error) {
	if atlas.Len() != len(lut.Slots) {
		return nil, fmt.Errorf("atlas has %d slots, LUT references %d",
			atlas.Len(), len(lut.Slots))
	}
	return &FrameTranscoder{atlas: atlas, lut: lut}, nil
}

// Atlas returns the glyph bitmaps the transcoder tiles with.
func (t *FrameTranscoder) Atlas() *GlyphAtlas { return t.atlas }

// LUT returns the intensity lookup table.
func (t *FrameTranscoder) LUT() *LUT { return t.lut }

// Grid returns the number of whole cells that fit a width x height frame.
func (t *FrameTranscoder) Grid(width, height int) (cols, rows int) {
	return width / t.atlas.CellWidth, height / t.atlas.CellHeight
}

// CanvasSize returns the output size for a width x height frame.
func (t *FrameTranscoder) CanvasSize(width, height int) (int, int) {
	cols, rows := t.Grid(width, height)
	return cols * t.atlas.CellWidth, rows * t.atlas.CellHeight
}

// Transcode renders frame into a new canvas.
func (t *FrameTranscoder) Transcode(frame image.Image) (*image.Gray, error) {
	b := frame.Bounds()
	w, h := t.CanvasSize(b.Dx(), b.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d frame, %dx%d cell", ErrFrameTooSmall,
			b.Dx(), b.Dy(), t.atlas.CellWidth, t.atlas.CellHeight)
	}
	dst := imageutil.NewGray(w, h)
	if err := t.TranscodeInto(dst, frame); err != nil {
		return nil, err
	}
	return dst, nil
}

// TranscodeInto renders frame into dst, which must be exactly
// CanvasSize of the frame. Edge pixels that do not fill a whole cell are
// dropped.
//
// This runs once per output frame. Cells are sampled first, then the
// canvas is tiled one glyph row at a time so the inner loop is a copy.
func (t *FrameTranscoder) TranscodeInto(dst *image.Gray, frame image.Image) error {
	b := frame.Bounds()
	cols, rows := t.Grid(b.Dx(), b.Dy())
	if cols == 0 || rows == 0 {
		return fmt.Errorf("%w: %dx%d frame, %dx%d cell", ErrFrameTooSmall,
			b.Dx(), b.Dy(), t.atlas.CellWidth, t.atlas.CellHeight)
	}
	cw, ch := t.atlas.CellWidth, t.atlas.CellHeight
	if sz := dst.Bounds().Size(); sz.X != cols*cw || sz.Y != rows*ch {
		return fmt.Errorf("canvas is %dx%d, want %dx%d", sz.X, sz.Y, cols*cw, rows*ch)
	}

	crop := image.Rect(b.Min.X, b.Min.Y, b.Min.X+cols*cw, b.Min.Y+rows*ch)
	gray := imageutil.ToGray(frame, crop)
	samples := imageutil.ResizeGray(gray, cols, rows, imageutil.InterpolationArea)

	slots := make([]uint16, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			slots[y*cols+x] = t.lut.Table[samples.Pix[y*samples.Stride+x]]
		}
	}

	cell := cw * ch
	atlas := t.atlas.Pix
	origin := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y)
	for cy := 0; cy < rows; cy++ {
		row := slots[cy*cols : (cy+1)*cols]
		for gy := 0; gy < ch; gy++ {
			line := dst.Pix[origin+(cy*ch+gy)*dst.Stride:]
			for cx, s := range row {
				src := int(s)*cell + gy*cw
				copy(line[cx*cw:(cx+1)*cw], atlas[src:src+cw])
			}
		}
	}
	return nil
}
