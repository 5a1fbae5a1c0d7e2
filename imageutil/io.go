package imageutil

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// LoadImage loads an image from the specified path. PNG, JPEG, GIF, TIFF
// and BMP are supported; EXIF orientation is applied.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return img, nil
}

// SaveImage saves an image to the specified path. The format is chosen
// from the file extension.
func SaveImage(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// IsImagePath reports whether path has an extension SaveImage can write.
func IsImagePath(path string) bool {
	_, err := imaging.FormatFromFilename(path)
	return err == nil
}
