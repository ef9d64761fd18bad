// Package ocr runs text recognition over preprocessed tooltip captures.
package ocr

import (
	"image"

	"github.com/ppiankov/pricelens/internal/model"
)

// Engine is a text recognition backend. Init is expensive and called once;
// Recognize returns fragments in the pixel coordinates of the given image.
type Engine interface {
	Init() error
	Recognize(img image.Image) ([]model.TextFragment, error)
	Close() error
}
