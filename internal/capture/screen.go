package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ScreenSource captures the primary display
type ScreenSource struct{}

// NewScreenSource creates a live screen source
func NewScreenSource() *ScreenSource {
	return &ScreenSource{}
}

// Bounds returns the primary display rectangle
func (s *ScreenSource) Bounds() (image.Rectangle, error) {
	r, err := screenshot.ScreenRect()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("screen bounds: %w", err)
	}
	return r, nil
}

// Capture grabs rect from the display
func (s *ScreenSource) Capture(ctx context.Context, rect image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", rect, err)
	}
	return img, nil
}
