// Package imageutil provides the grayscale image helpers used by the
// glyph pipeline: luminance conversion, area downsampling, pixel
// statistics and image file IO.
package imageutil

import (
	"bytes"
	"image"
)

// NewGray creates a black grayscale image of the given size with its
// origin at (0, 0).
func NewGray(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// Rows calls fn with each row of img's pixels, top to bottom. The slices
// alias img.Pix.
func Rows(img *image.Gray, fn func(y int, row []uint8)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		fn(y-b.Min.Y, img.Pix[off:off+b.Dx()])
	}
}

// Mean returns the average pixel value of img in [0, 255]. An empty image
// has mean 0.
func Mean(img *image.Gray) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	var sum uint64
	Rows(img, func(_ int, row []uint8) {
		for _, v := range row {
			sum += uint64(v)
		}
	})
	return float64(sum) / float64(b.Dx()*b.Dy())
}

// Equal reports whether a and b have the same size and identical pixels.
func Equal(a, b *image.Gray) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	if a.Stride == b.Stride && a.Bounds() == b.Bounds() && a.Stride == a.Bounds().Dx() {
		return bytes.Equal(a.Pix, b.Pix)
	}
	var rowsB [][]uint8
	Rows(b, func(_ int, row []uint8) { rowsB = append(rowsB, row) })
	equal := true
	Rows(a, func(y int, row []uint8) {
		if equal && !bytes.Equal(row, rowsB[y]) {
			equal = false
		}
	})
	return equal
}
