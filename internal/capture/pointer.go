package capture

import (
	"image"

	"github.com/go-vgo/robotgo"
)

// PointerSource reports the current pointer position in screen coordinates
type PointerSource interface {
	Position() (image.Point, error)
}

// RobotPointer reads the live mouse position
type RobotPointer struct{}

// Position returns the mouse position
func (RobotPointer) Position() (image.Point, error) {
	x, y := robotgo.Location()
	return image.Pt(x, y), nil
}

// FixedPointer always reports the same position. Used for saved screenshots.
type FixedPointer image.Point

// Position returns the fixed position
func (p FixedPointer) Position() (image.Point, error) {
	return image.Point(p), nil
}
