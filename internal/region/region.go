// Package region computes the screen rectangle captured around the pointer.
package region

import (
	"image"

	"github.com/ppiankov/pricelens/internal/model"
)

// Calculator places a fixed-size capture window relative to the pointer
type Calculator struct {
	Width   int
	Height  int
	OffsetX int
	OffsetY int
}

// NewCalculator creates a calculator from capture configuration
func NewCalculator(cfg model.CaptureConfig) Calculator {
	return Calculator{
		Width:   cfg.Width,
		Height:  cfg.Height,
		OffsetX: cfg.OffsetX,
		OffsetY: cfg.OffsetY,
	}
}

// Compute returns the capture region for a pointer position. The window keeps its
// size and slides back inside screen when it would overflow; it only shrinks when
// the screen itself is smaller than the window.
func (c Calculator) Compute(pointer image.Point, screen image.Rectangle) model.CaptureRegion {
	width := min(max(c.Width, 1), screen.Dx())
	height := min(max(c.Height, 1), screen.Dy())

	x := clamp(pointer.X+c.OffsetX, screen.Min.X, screen.Max.X-width)
	y := clamp(pointer.Y+c.OffsetY, screen.Min.Y, screen.Max.Y-height)

	return model.CaptureRegion{
		Origin: image.Pt(x, y),
		Width:  width,
		Height: height,
		Anchor: image.Pt(pointer.X-x, pointer.Y-y),
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
