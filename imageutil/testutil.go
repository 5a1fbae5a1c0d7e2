package imageutil

import (
	"image"
	"image/color"
	"math"
)

// CreateSolidGray creates a grayscale image filled with v.
func CreateSolidGray(width, height int, v uint8) *image.Gray {
	img := NewGray(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// CreateSolidRGBA creates an opaque RGBA image of one color.
func CreateSolidRGBA(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// CreateGradientGray creates a horizontal black to white gradient.
func CreateGradientGray(width, height int) *image.Gray {
	img := NewGray(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(0)
			if width > 1 {
				v = uint8(255 * x / (width - 1))
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// CreateCheckerboardGray creates a checkerboard of squareSize squares,
// white in the top left corner.
func CreateCheckerboardGray(width, height, squareSize int) *image.Gray {
	img := NewGray(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// CalculateMSEGray calculates the Mean Squared Error between two grayscale images.
func CalculateMSEGray(img1, img2 *image.Gray) float64 {
	if img1.Bounds().Size() != img2.Bounds().Size() {
		return math.MaxFloat64
	}
	b1, b2 := img1.Bounds(), img2.Bounds()
	var sumSq float64
	for y := 0; y < b1.Dy(); y++ {
		for x := 0; x < b1.Dx(); x++ {
			d := float64(img1.GrayAt(b1.Min.X+x, b1.Min.Y+y).Y) -
				float64(img2.GrayAt(b2.Min.X+x, b2.Min.Y+y).Y)
			sumSq += d * d
		}
	}
	return sumSq / float64(b1.Dx()*b1.Dy())
}
