// Package capture reads screen pixels and the pointer position.
package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Source returns bitmaps of screen regions
type Source interface {
	Bounds() (image.Rectangle, error)
	Capture(ctx context.Context, rect image.Rectangle) (image.Image, error)
}

// ImageSource serves captures from a saved screenshot
type ImageSource struct {
	img image.Image
}

// NewImageSource wraps an in-memory screenshot
func NewImageSource(img image.Image) *ImageSource {
	return &ImageSource{img: img}
}

// OpenImageSource decodes a screenshot file (PNG, JPEG, BMP, GIF or TIFF)
func OpenImageSource(path string) (*ImageSource, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open screenshot: %w", err)
	}
	return &ImageSource{img: img}, nil
}

// Bounds returns the screenshot bounds
func (s *ImageSource) Bounds() (image.Rectangle, error) {
	return s.img.Bounds(), nil
}

// Capture crops rect out of the screenshot. The result starts at (0,0).
func (s *ImageSource) Capture(ctx context.Context, rect image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := rect.Intersect(s.img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region %v is outside the screenshot %v", rect, s.img.Bounds())
	}
	return imaging.Crop(s.img, r), nil
}
