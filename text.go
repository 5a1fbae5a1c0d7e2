package glyphreel

import (
	"fmt"
	"image"
	"strings"

	"github.com/wbrown/glyphreel/imageutil"
)

// DefaultTextAspect is the height to width ratio of a terminal cell.
const DefaultTextAspect = 2.0

// Text renders frame as lines of LUT glyphs, width characters wide. The
// number of lines keeps the frame's aspect ratio for cells aspect times
// taller than wide. This is the textual counterpart of Transcode, meant
// for previews in a terminal.
func (t *FrameTranscoder) Text(frame image.Image, width int, aspect float64) (string, error) {
	b := frame.Bounds()
	if width <= 0 || b.Empty() {
		return "", fmt.Errorf("%w: %dx%d frame at width %d", ErrFrameTooSmall,
			b.Dx(), b.Dy(), width)
	}
	if aspect <= 0 {
		aspect = DefaultTextAspect
	}
	rows := int(float64(width)*float64(b.Dy())/float64(b.Dx())/aspect + 0.5)
	rows = max(1, rows)

	gray := imageutil.ToGray(frame, b)
	samples := imageutil.ResizeGray(gray, width, rows, imageutil.InterpolationArea)

	var sb strings.Builder
	sb.Grow(rows * (width + 1))
	for y := 0; y < rows; y++ {
		line := samples.Pix[y*samples.Stride : y*samples.Stride+width]
		for _, v := range line {
			sb.WriteRune(t.lut.Rune(v))
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
