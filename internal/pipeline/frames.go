package pipeline

import (
	"image"
	"log/slog"
	"sync"

	"github.com/corona10/goimagehash"

	"github.com/ppiankov/pricelens/internal/model"
)

// frameMemo remembers the last successfully resolved capture so a tooltip that
// has not changed at all skips recognition. A capture is reused only when its
// region is the same rectangle, its perceptual hash is identical and every
// pixel matches. The hash is a cheap reject before the pixel comparison.
type frameMemo struct {
	enabled bool

	mu    sync.Mutex
	last  *frame
	query model.ResolvedQuery
}

// frame is a capture with its region and hash
type frame struct {
	rect image.Rectangle
	img  image.Image
	hash *goimagehash.ImageHash
}

func newFrameMemo(enabled bool) *frameMemo {
	return &frameMemo{enabled: enabled}
}

// frame returns nil when reuse is disabled or hashing fails
func (m *frameMemo) frame(rect image.Rectangle, img image.Image) *frame {
	if !m.enabled {
		return nil
	}
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		slog.Debug("cannot hash capture", "error", err)
		return nil
	}
	return &frame{rect: rect, img: img, hash: h}
}

func (m *frameMemo) match(f *frame) (model.ResolvedQuery, bool) {
	if f == nil {
		return model.ResolvedQuery{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil || m.last.rect != f.rect {
		return model.ResolvedQuery{}, false
	}
	dist, err := f.hash.Distance(m.last.hash)
	if err != nil || dist != 0 {
		return model.ResolvedQuery{}, false
	}
	if !samePixels(f.img, m.last.img) {
		return model.ResolvedQuery{}, false
	}
	return m.query, true
}

func (m *frameMemo) remember(f *frame, q model.ResolvedQuery) {
	if f == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = f
	m.query = q
}

func samePixels(a, b image.Image) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return false
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}
