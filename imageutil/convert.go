package imageutil

import (
	"image"
)

// luma is the BT.601 luminance of an 8-bit RGB triple, the same weights
// OpenCV uses for COLOR_BGR2GRAY.
func luma(r, g, b uint32) uint8 {
	lum := (299*r + 587*g + 114*b + 500) / 1000
	if lum > 255 {
		lum = 255
	}
	return uint8(lum)
}

// ToGray converts the part of img inside r to grayscale. The result has
// its origin at (0, 0); r is clipped to img's bounds.
//
// Gray, YCbCr, RGBA and NRGBA images are read directly. For Y'CbCr the
// luma plane is used as is; everything else goes through BT.601 weights.
func ToGray(img image.Image, r image.Rectangle) *image.Gray {
	r = r.Intersect(img.Bounds())
	w, h := r.Dx(), r.Dy()
	dst := NewGray(w, h)
	if r.Empty() {
		return dst
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			off := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[off:off+w])
		}
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			off := src.YOffset(r.Min.X, r.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Y[off:off+w])
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			off := src.PixOffset(r.Min.X, r.Min.Y+y)
			for x := range row {
				p := src.Pix[off+x*4 : off+x*4+3]
				row[x] = luma(uint32(p[0]), uint32(p[1]), uint32(p[2]))
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			off := src.PixOffset(r.Min.X, r.Min.Y+y)
			for x := range row {
				p := src.Pix[off+x*4 : off+x*4+3]
				row[x] = luma(uint32(p[0]), uint32(p[1]), uint32(p[2]))
			}
		}
	default:
		for y := 0; y < h; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			for x := range row {
				cr, cg, cb, _ := img.At(r.Min.X+x, r.Min.Y+y).RGBA()
				row[x] = luma(cr>>8, cg>>8, cb>>8)
			}
		}
	}
	return dst
}
