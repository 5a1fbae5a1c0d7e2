package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea averages every source pixel covered by a
	// destination pixel, the equivalent of OpenCV's INTER_AREA when
	// shrinking.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest

	// InterpolationCatmullRom uses the Catmull-Rom cubic kernel.
	InterpolationCatmullRom
)

// boxKernel weighs source pixels equally inside a unit footprint. When
// shrinking, x/image/draw widens a kernel's support by the scale factor,
// so this becomes the mean over each destination pixel's source area.
var boxKernel = &draw.Kernel{
	Support: 0.5,
	At: func(t float64) float64 {
		return 1
	},
}

func scalerFor(interp Interpolation) draw.Scaler {
	switch interp {
	case InterpolationArea:
		return boxKernel
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	case InterpolationCatmullRom:
		return draw.CatmullRom
	}
	return boxKernel
}

// ResizeGray resizes a grayscale image to the specified dimensions.
func ResizeGray(img *image.Gray, width, height int, interp Interpolation) *image.Gray {
	dst := NewGray(width, height)
	if img.Bounds().Size() == dst.Bounds().Size() {
		Rows(img, func(y int, row []uint8) {
			copy(dst.Pix[y*dst.Stride:], row)
		})
		return dst
	}
	scalerFor(interp).Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ResizeToWidth resizes an image to the specified width while maintaining
// aspect ratio.
func ResizeToWidth(img *image.Gray, width int, interp Interpolation) *image.Gray {
	b := img.Bounds()
	height := int(float64(width) * float64(b.Dy()) / float64(b.Dx()))
	return ResizeGray(img, width, max(1, height), interp)
}
