// Package pipeline runs one capture-to-price cycle.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ppiankov/pricelens/internal/cache"
	"github.com/ppiankov/pricelens/internal/candidate"
	"github.com/ppiankov/pricelens/internal/capture"
	"github.com/ppiankov/pricelens/internal/correct"
	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/match"
	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/preprocess"
	"github.com/ppiankov/pricelens/internal/region"
)

// Extractor recognizes text in preprocessed variants
type Extractor interface {
	Extract(ctx context.Context, variants []preprocess.Variant) ([]model.TextFragment, error)
}

// Catalog looks up item prices
type Catalog interface {
	ItemByName(ctx context.Context, name string, mode model.GameMode) (*model.Item, error)
}

// Corpus supplies known item names
type Corpus interface {
	Names() []string
}

// Options are the collaborators of a pipeline. Cache may be nil to disable
// resolution caching.
type Options struct {
	Source    capture.Source
	Extractor Extractor
	Corpus    Corpus
	Catalog   Catalog
	Cache     *cache.ResolutionCache
	Mode      model.GameMode
}

// Pipeline orchestrates region selection, recognition, matching and lookup
type Pipeline struct {
	config    *model.Config
	source    capture.Source
	regions   region.Calculator
	pre       *preprocess.Preprocessor
	extractor Extractor
	resolver  *candidate.Resolver
	corrector *correct.Corrector
	matcher   *match.Matcher
	corpus    Corpus
	catalog   Catalog
	cache     *cache.ResolutionCache
	mode      model.GameMode
	frames    *frameMemo
}

// New creates a pipeline with the given configuration and collaborators
func New(cfg *model.Config, opts Options) *Pipeline {
	mode := opts.Mode
	if mode == "" {
		mode = model.ModeRegular
	}

	return &Pipeline{
		config:    cfg,
		source:    opts.Source,
		regions:   region.NewCalculator(cfg.Capture),
		pre:       preprocess.New(cfg.OCR.Passes, cfg.Capture.MinOCRHeight),
		extractor: opts.Extractor,
		resolver:  candidate.NewResolver(),
		corrector: correct.New(),
		matcher:   match.New(cfg.Match.Threshold),
		corpus:    opts.Corpus,
		catalog:   opts.Catalog,
		cache:     opts.Cache,
		mode:      mode,
		frames:    newFrameMemo(cfg.Debug.FrameReuse),
	}
}

// WithSource returns a pipeline reading from src that shares every other
// collaborator and the resolution cache. The copy starts with its own frame memo.
func (p *Pipeline) WithSource(src capture.Source) *Pipeline {
	cp := *p
	cp.source = src
	cp.frames = newFrameMemo(p.frames.enabled)
	return &cp
}

// Mode returns the game mode lookups are made for
func (p *Pipeline) Mode() model.GameMode {
	return p.mode
}

// Timings records how long each stage took
type Timings struct {
	Capture   time.Duration `json:"capture"`
	Recognize time.Duration `json:"recognize"`
	Lookup    time.Duration `json:"lookup"`
	Total     time.Duration `json:"total"`
}

// Outcome is the result of one cycle. Fields are filled as far as the cycle got.
type Outcome struct {
	Region      model.CaptureRegion   `json:"region"`
	Fragments   []model.TextFragment  `json:"fragments,omitempty"`
	Candidates  []candidate.Candidate `json:"-"`
	Query       *model.ResolvedQuery  `json:"query,omitempty"`
	Item        *model.Item           `json:"item,omitempty"`
	CacheHit    bool                  `json:"cache_hit"`
	FrameReused bool                  `json:"frame_reused"`
	Timings     Timings               `json:"timings"`
	Err         error                 `json:"-"`
}

// Run executes one capture cycle for a pointer in screen coordinates. Caches
// and the frame memo are only updated when the whole cycle succeeds.
func (p *Pipeline) Run(ctx context.Context, pointer image.Point) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{}
	defer func() { out.Timings.Total = time.Since(start) }()

	fail := func(err error) (*Outcome, error) {
		out.Err = err
		return out, err
	}

	// 1. Let the tooltip settle
	if d := p.config.Capture.SettleDelay; d > 0 {
		select {
		case <-ctx.Done():
			return fail(ctx.Err())
		case <-time.After(d):
		}
	}

	// 2. Region around the pointer
	bounds, err := p.source.Bounds()
	if err != nil {
		return fail(apperrors.Wrap(err, apperrors.CaptureFailure, "cannot read screen bounds"))
	}
	out.Region = p.regions.Compute(pointer, bounds)

	// 3. Capture
	stage := time.Now()
	img, err := p.source.Capture(ctx, out.Region.Rect())
	out.Timings.Capture = time.Since(stage)
	if err != nil {
		return fail(apperrors.Wrap(err, apperrors.CaptureFailure, "cannot capture region"))
	}
	if p.config.Debug.SaveRegion {
		p.saveRegion(img)
	}

	// 4. Identical tooltip as last time: skip recognition
	frame := p.frames.frame(out.Region.Rect(), img)
	if prev, ok := p.frames.match(frame); ok {
		out.FrameReused = true
		prev.At = time.Now()
		out.Query = &prev
		slog.Debug("frame unchanged, reusing resolved name", "name", prev.Name)
	} else {
		// 5. Recognize
		stage = time.Now()
		query, err := p.recognize(ctx, img, out)
		out.Timings.Recognize = time.Since(stage)
		if err != nil {
			return fail(err)
		}
		out.Query = query
	}

	// 6. Lookup
	stage = time.Now()
	item, hit, err := p.lookup(ctx, out.Query.Name, out.Query.Mode)
	out.Timings.Lookup = time.Since(stage)
	if err != nil {
		return fail(err)
	}
	out.Item = item
	out.CacheHit = hit

	p.frames.remember(frame, *out.Query)
	return out, nil
}

// RunScreenshot runs a cycle against a saved screenshot instead of the live
// screen. The pointer is in the screenshot's pixel coordinates.
func (p *Pipeline) RunScreenshot(ctx context.Context, path string, pointer image.Point) (*Outcome, error) {
	src, err := capture.OpenImageSource(path)
	if err != nil {
		err = apperrors.Wrapf(err, apperrors.CaptureFailure, "cannot open screenshot %s", path)
		return &Outcome{Err: err}, err
	}

	cp := p.WithSource(src)
	cp.config = p.noSettle()
	return cp.Run(ctx, pointer)
}

// noSettle returns the config with the settle delay removed
func (p *Pipeline) noSettle() *model.Config {
	cfg := *p.config
	cfg.Capture.SettleDelay = 0
	return &cfg
}

// recognize turns a capture into a resolved query
func (p *Pipeline) recognize(ctx context.Context, img image.Image, out *Outcome) (*model.ResolvedQuery, error) {
	variants, err := p.pre.Process(img)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CaptureFailure, "captured region is unusable")
	}

	fragments, err := p.extractor.Extract(ctx, variants)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	out.Fragments = fragments

	out.Candidates = p.resolver.Rank(fragments, out.Region.LocalPointer())
	if len(out.Candidates) == 0 {
		return nil, apperrors.Newf(apperrors.NoTextDetected, "no item name among %d fragments", len(fragments))
	}

	q := p.resolve(out.Candidates[0].Text, p.mode)
	return &q, nil
}

// resolve corrects and matches a literal
func (p *Pipeline) resolve(literal string, mode model.GameMode) model.ResolvedQuery {
	corrected := p.corrector.Correct(literal)

	var names []string
	if p.corpus != nil {
		names = p.corpus.Names()
	}
	m := p.matcher.Match(corrected, names)

	slog.Debug("resolved", "literal", literal, "corrected", corrected, "name", m.Name, "method", m.Method, "score", m.Score)
	return model.ResolvedQuery{
		Name:      m.Name,
		Mode:      mode,
		At:        time.Now(),
		Literal:   literal,
		Corrected: corrected,
		Score:     m.Score,
		Method:    m.Method,
	}
}

// lookup serves from the resolution cache or queries the catalog
func (p *Pipeline) lookup(ctx context.Context, name string, mode model.GameMode) (*model.Item, bool, error) {
	if p.cache != nil {
		if e, ok := p.cache.Get(name, mode); ok {
			item := e.Item
			return &item, true, nil
		}
	}

	item, err := p.catalog.ItemByName(ctx, name, mode)
	if err != nil {
		return nil, false, err
	}
	if p.cache != nil {
		p.cache.Put(name, mode, *item)
	}
	return item, false, nil
}

// Lookup resolves a typed item name without capturing, for manual search
func (p *Pipeline) Lookup(ctx context.Context, text string, mode model.GameMode) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{}
	defer func() { out.Timings.Total = time.Since(start) }()

	if mode == "" {
		mode = p.mode
	}
	q := p.resolve(text, mode)
	out.Query = &q

	item, hit, err := p.lookup(ctx, q.Name, mode)
	out.Timings.Lookup = time.Since(start)
	if err != nil {
		out.Err = err
		return out, err
	}
	out.Item = item
	out.CacheHit = hit
	return out, nil
}

// saveRegion writes the capture for debugging. Failures are logged only.
func (p *Pipeline) saveRegion(img image.Image) {
	dir := p.config.Debug.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("cannot create debug dir", "dir", dir, "error", err)
		return
	}
	path := filepath.Join(dir, "region_"+time.Now().Format("20060102_150405.000")+".png")
	if err := imaging.Save(img, path); err != nil {
		slog.Warn("cannot save debug region", "path", path, "error", err)
		return
	}
	slog.Debug("saved debug region", "path", path)
}
