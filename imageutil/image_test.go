package imageutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestNewGray(t *testing.T) {
	img := NewGray(100, 50)
	if img.Bounds().Dx() != 100 {
		t.Errorf("Expected width 100, got %d", img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 50 {
		t.Errorf("Expected height 50, got %d", img.Bounds().Dy())
	}
	if Mean(img) != 0 {
		t.Errorf("Expected new image to be black, got mean %f", Mean(img))
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		img  *image.Gray
		want float64
	}{
		{"black", CreateSolidGray(8, 8, 0), 0},
		{"white", CreateSolidGray(8, 8, 255), 255},
		{"checkerboard", CreateCheckerboardGray(8, 8, 1), 127.5},
		{"empty", NewGray(0, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.img); got != tt.want {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestMeanSubImage(t *testing.T) {
	img := CreateSolidGray(10, 10, 0)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.SetGray(x, y, color.Gray{Y: 200})
		}
	}
	sub := img.SubImage(image.Rect(0, 0, 5, 5)).(*image.Gray)
	if got := Mean(sub); got != 200 {
		t.Errorf("Expected sub-image mean 200, got %f", got)
	}
}

func TestEqual(t *testing.T) {
	a := CreateCheckerboardGray(8, 8, 2)
	b := CreateCheckerboardGray(8, 8, 2)
	if !Equal(a, b) {
		t.Error("Identical images should be equal")
	}

	b.SetGray(3, 3, color.Gray{Y: 7})
	if Equal(a, b) {
		t.Error("Images differing in one pixel should not be equal")
	}

	if Equal(a, CreateCheckerboardGray(8, 9, 2)) {
		t.Error("Images of different size should not be equal")
	}

	// Same pixels seen through a sub-image with a different origin.
	big := NewGray(16, 16)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			big.SetGray(x+4, y+4, a.GrayAt(x, y))
		}
	}
	sub := big.SubImage(image.Rect(4, 4, 12, 12)).(*image.Gray)
	if !Equal(a, sub) {
		t.Error("Sub-image with the same pixels should be equal")
	}
}

func TestToGray(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"red", color.RGBA{255, 0, 0, 255}, 76},
		{"green", color.RGBA{0, 255, 0, 255}, 150},
		{"blue", color.RGBA{0, 0, 255, 255}, 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rgba := CreateSolidRGBA(4, 4, tt.c)
			gray := ToGray(rgba, rgba.Bounds())
			if got := gray.GrayAt(1, 1).Y; got != tt.want {
				t.Errorf("RGBA: expected %d, got %d", tt.want, got)
			}

			nrgba := image.NewNRGBA(rgba.Bounds())
			copy(nrgba.Pix, rgba.Pix)
			gray = ToGray(nrgba, nrgba.Bounds())
			if got := gray.GrayAt(1, 1).Y; got != tt.want {
				t.Errorf("NRGBA: expected %d, got %d", tt.want, got)
			}

			pal := image.NewPaletted(rgba.Bounds(), color.Palette{tt.c})
			gray = ToGray(pal, pal.Bounds())
			if got := gray.GrayAt(1, 1).Y; got != tt.want {
				t.Errorf("Paletted: expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestToGrayYCbCrUsesLumaPlane(t *testing.T) {
	img := image.NewYCbCr(image.Rect(0, 0, 8, 4), image.YCbCrSubsampleRatio420)
	for i := range img.Y {
		img.Y[i] = uint8(i)
	}
	for i := range img.Cb {
		img.Cb[i] = 40
		img.Cr[i] = 220
	}
	gray := ToGray(img, img.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			want := img.Y[img.YOffset(x, y)]
			if got := gray.GrayAt(x, y).Y; got != want {
				t.Fatalf("Expected luma %d at (%d,%d), got %d", want, x, y, got)
			}
		}
	}
}

func TestToGrayCrop(t *testing.T) {
	src := CreateGradientGray(10, 4)
	gray := ToGray(src, image.Rect(2, 1, 6, 3))
	if gray.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("Expected bounds (0,0)-(4,2), got %v", gray.Bounds())
	}
	if gray.GrayAt(0, 0) != src.GrayAt(2, 1) {
		t.Errorf("Expected %v, got %v", src.GrayAt(2, 1), gray.GrayAt(0, 0))
	}

	// A crop larger than the source is clipped.
	gray = ToGray(src, image.Rect(-5, -5, 50, 50))
	if gray.Bounds().Size() != src.Bounds().Size() {
		t.Errorf("Expected clipped size %v, got %v", src.Bounds().Size(), gray.Bounds().Size())
	}
}

func TestResizeGrayArea(t *testing.T) {
	// 2x2 blocks of distinct values average to exactly those values.
	src := NewGray(8, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8(40 * (x/2 + 2*(y/2)))})
		}
	}
	dst := ResizeGray(src, 4, 2, InterpolationArea)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			want := uint8(40 * (x + 2*y))
			if got := dst.GrayAt(x, y).Y; got != want {
				t.Errorf("Expected %d at (%d,%d), got %d", want, x, y, got)
			}
		}
	}
}

func TestResizeGrayAreaAverages(t *testing.T) {
	// A 1px checkerboard shrunk by 4 is uniform mid gray.
	src := CreateCheckerboardGray(16, 16, 1)
	dst := ResizeGray(src, 4, 4, InterpolationArea)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := int(dst.GrayAt(x, y).Y)
			if got < 126 || got > 129 {
				t.Errorf("Expected ~127 at (%d,%d), got %d", x, y, got)
			}
		}
	}
}

func TestResizeGray(t *testing.T) {
	src := CreateGradientGray(100, 50)
	for _, interp := range []Interpolation{
		InterpolationArea, InterpolationLinear, InterpolationNearest, InterpolationCatmullRom,
	} {
		dst := ResizeGray(src, 50, 25, interp)
		if dst.Bounds().Dx() != 50 || dst.Bounds().Dy() != 25 {
			t.Errorf("Interpolation %d: expected 50x25, got %dx%d",
				interp, dst.Bounds().Dx(), dst.Bounds().Dy())
		}
	}

	same := ResizeGray(src, 100, 50, InterpolationArea)
	if !Equal(same, src) {
		t.Error("Resizing to the same size should copy pixels")
	}
	same.Pix[0] = 99
	if src.Pix[0] == 99 {
		t.Error("Resize result should not alias the source")
	}
}

func TestResizeToWidth(t *testing.T) {
	dst := ResizeToWidth(CreateSolidGray(100, 50, 9), 40, InterpolationArea)
	if dst.Bounds().Dx() != 40 || dst.Bounds().Dy() != 20 {
		t.Errorf("Expected 40x20, got %dx%d", dst.Bounds().Dx(), dst.Bounds().Dy())
	}
}

func TestLoadSaveImage(t *testing.T) {
	tmpDir := t.TempDir()
	img := CreateCheckerboardGray(64, 64, 8)

	pngPath := filepath.Join(tmpDir, "test.png")
	if err := SaveImage(img, pngPath); err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	loaded, err := LoadImage(pngPath)
	if err != nil {
		t.Fatalf("Failed to load PNG: %v", err)
	}

	// PNG should be lossless
	mse := CalculateMSEGray(img, ToGray(loaded, loaded.Bounds()))
	if mse > 0.01 {
		t.Errorf("PNG should be lossless, MSE=%f", mse)
	}
}

func TestLoadImageMissing(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error loading a missing file")
	}
}

func TestIsImagePath(t *testing.T) {
	if !IsImagePath("frame_0001.png") {
		t.Error("Expected .png to be an image path")
	}
	if IsImagePath("frames.txt") {
		t.Error("Expected .txt not to be an image path")
	}
}

func TestCalculateMSEGray(t *testing.T) {
	a := CreateSolidGray(10, 10, 0)
	b := CreateSolidGray(10, 10, 0)
	if mse := CalculateMSEGray(a, b); mse != 0 {
		t.Errorf("Expected MSE 0 for identical images, got %f", mse)
	}
	b = CreateSolidGray(10, 10, 10)
	if mse := CalculateMSEGray(a, b); mse != 100 {
		t.Errorf("Expected MSE 100, got %f", mse)
	}
}
