package model

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// GameMode tags which price market a lookup targets
type GameMode string

const (
	ModeRegular GameMode = "regular"
	ModePVE     GameMode = "pve"
)

// ParseGameMode validates a mode string, defaulting empty input to regular
func ParseGameMode(s string) (GameMode, error) {
	switch GameMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRegular:
		return ModeRegular, nil
	case ModePVE:
		return ModePVE, nil
	default:
		return "", fmt.Errorf("unknown game mode: %s (supported: regular, pve)", s)
	}
}

// CaptureRegion is the screen rectangle captured for one trigger
type CaptureRegion struct {
	Origin image.Point `json:"origin"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Anchor image.Point `json:"anchor"` // pointer position relative to Origin
}

// Rect returns the region as a screen rectangle
func (r CaptureRegion) Rect() image.Rectangle {
	return image.Rect(r.Origin.X, r.Origin.Y, r.Origin.X+r.Width, r.Origin.Y+r.Height)
}

// LocalPointer returns the pointer in region-local coordinates
func (r CaptureRegion) LocalPointer() Point {
	return Point{X: float64(r.Anchor.X), Y: float64(r.Anchor.Y)}
}

// MatchMethod records which matcher step produced a name
type MatchMethod string

const (
	MatchExact      MatchMethod = "exact"
	MatchSubstring  MatchMethod = "substring"
	MatchSimilarity MatchMethod = "similarity"
	MatchNone       MatchMethod = "none" // fell back to the corrected text
)

// ResolvedQuery is the canonical name produced from one capture
type ResolvedQuery struct {
	Name      string      `json:"name"`
	Mode      GameMode    `json:"mode"`
	At        time.Time   `json:"at"`
	Literal   string      `json:"literal,omitempty"`   // text picked by the candidate resolver
	Corrected string      `json:"corrected,omitempty"` // text after OCR error correction
	Score     float64     `json:"score"`
	Method    MatchMethod `json:"method"`
}
