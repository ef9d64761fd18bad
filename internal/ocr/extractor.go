package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/preprocess"
)

// Extractor owns the recognition engine for the process lifetime
type Extractor struct {
	engine   Engine
	initWait time.Duration

	once    sync.Once
	ready   chan struct{}
	initErr error

	mu sync.Mutex // serializes engine access
}

// NewExtractor creates an extractor. initWait bounds how long Extract waits for
// the engine to finish initializing.
func NewExtractor(engine Engine, initWait time.Duration) *Extractor {
	return &Extractor{
		engine:   engine,
		initWait: initWait,
		ready:    make(chan struct{}),
	}
}

// Start initializes the engine in the background. Repeated calls are no-ops.
func (e *Extractor) Start() {
	e.once.Do(func() {
		go func() {
			start := time.Now()
			e.mu.Lock()
			err := e.engine.Init()
			e.mu.Unlock()

			e.initErr = err
			close(e.ready)

			if err != nil {
				slog.Error("ocr engine initialization failed", "error", err)
				return
			}
			slog.Info("ocr engine ready", "elapsed", time.Since(start).Round(time.Millisecond))
		}()
	})
}

// Ready reports whether the engine initialized successfully
func (e *Extractor) Ready() bool {
	select {
	case <-e.ready:
		return e.initErr == nil
	default:
		return false
	}
}

// Wait blocks until initialization finishes, ctx is done, or the init wait elapses
func (e *Extractor) Wait(ctx context.Context) error {
	e.Start()

	select {
	case <-e.ready:
		return e.readyErr()
	default:
	}

	timer := time.NewTimer(e.initWait)
	defer timer.Stop()

	select {
	case <-e.ready:
	case <-timer.C:
		return apperrors.New(apperrors.EngineNotReady, "ocr engine is still initializing")
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), apperrors.EngineNotReady, "gave up waiting for ocr engine")
	}
	return e.readyErr()
}

func (e *Extractor) readyErr() error {
	if e.initErr != nil {
		return apperrors.Wrap(e.initErr, apperrors.EngineNotReady, "ocr engine failed to initialize")
	}
	return nil
}

// Extract recognizes every variant in order and concatenates the fragments.
// Boxes are mapped back into capture region coordinates.
func (e *Extractor) Extract(ctx context.Context, variants []preprocess.Variant) ([]model.TextFragment, error) {
	if err := e.Wait(ctx); err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("no variants to recognize")
	}

	var (
		fragments []model.TextFragment
		failed    int
		lastErr   error
	)
	for _, v := range variants {
		start := time.Now()
		found, err := e.recognize(v)
		if err != nil {
			failed++
			lastErr = err
			slog.Warn("recognition pass failed", "pass", v.Name, "error", err)
			continue
		}
		slog.Debug("recognition pass done", "pass", v.Name, "fragments", len(found), "elapsed", time.Since(start).Round(time.Millisecond))
		fragments = append(fragments, found...)
	}

	if failed == len(variants) {
		return nil, fmt.Errorf("all %d recognition passes failed: %w", failed, lastErr)
	}
	return fragments, nil
}

func (e *Extractor) recognize(v preprocess.Variant) ([]model.TextFragment, error) {
	e.mu.Lock()
	found, err := e.engine.Recognize(v.Image)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	inv := 1.0
	if v.Scale > 0 {
		inv = 1 / v.Scale
	}
	for i := range found {
		found[i].Pass = v.Name
		if inv != 1 {
			found[i].Box = found[i].Box.Scale(inv)
		}
	}
	return found, nil
}

// Close waits for a pending initialization and releases the engine
func (e *Extractor) Close() error {
	e.once.Do(func() {
		e.initErr = fmt.Errorf("extractor closed")
		close(e.ready)
	})
	<-e.ready

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Close()
}
