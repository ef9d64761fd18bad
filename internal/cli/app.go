package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ppiankov/pricelens/internal/cache"
	"github.com/ppiankov/pricelens/internal/capture"
	"github.com/ppiankov/pricelens/internal/catalog"
	"github.com/ppiankov/pricelens/internal/corpus"
	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/ocr"
	"github.com/ppiankov/pricelens/internal/pipeline"
	"github.com/ppiankov/pricelens/internal/version"
)

// app holds the long-lived collaborators of one command run
type app struct {
	cfg       *model.Config
	catalog   *catalog.Client
	disk      *cache.DiskCache
	corpus    *corpus.Store
	extractor *ocr.Extractor
	pipeline  *pipeline.Pipeline
}

// appOptions selects which parts of the stack a command needs
type appOptions struct {
	source     capture.Source
	ocr        bool
	skipCorpus bool // caller refreshes the corpus itself
}

// newApp wires the stack. The OCR engine starts initializing in the
// background and the corpus is loaded before returning; a corpus failure
// degrades matching but is not fatal.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	mode, err := model.ParseGameMode(cfg.Catalog.GameMode)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		catalog: catalog.NewClient(cfg.Catalog),
	}

	var extractor pipeline.Extractor
	if opts.ocr {
		a.extractor = ocr.NewExtractor(ocr.NewTesseractEngine(cfg.OCR.Language, cfg.OCR.TessdataPrefix), cfg.OCR.InitWait)
		a.extractor.Start()
		extractor = a.extractor
	}

	a.disk = cache.NewDiskCache(cfg.Cache.CorpusDir, -1)
	a.corpus = corpus.NewStore(a.disk, a.catalog, version.Version, cfg.Cache.CorpusMaxAge)

	if !opts.skipCorpus {
		start := time.Now()
		if err := a.corpus.Load(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Item list unavailable, matching on raw text: %v\n", err)
		} else if verbose {
			st := a.corpus.Stats()
			fmt.Fprintf(os.Stderr, "✓ Loaded %d item names from %s (%v)\n", st.Size, st.Source, time.Since(start).Round(time.Millisecond))
		}
	}

	var rc *cache.ResolutionCache
	if cfg.Cache.Enabled {
		rc = cache.NewResolutionCache(cfg.Cache.ResolutionTTL)
	}

	a.pipeline = pipeline.New(cfg, pipeline.Options{
		Source:    opts.source,
		Extractor: extractor,
		Corpus:    a.corpus,
		Catalog:   a.catalog,
		Cache:     rc,
		Mode:      mode,
	})
	return a, nil
}

// waitForEngine blocks until OCR is ready, reporting progress
func (a *app) waitForEngine(ctx context.Context) error {
	if a.extractor == nil || a.extractor.Ready() {
		return nil
	}
	fmt.Fprintf(os.Stderr, "⚙️  Starting OCR engine...\n")
	start := time.Now()
	if err := a.extractor.Wait(ctx); err != nil {
		return err
	}
	slog.Info("OCR engine ready", "duration", time.Since(start))
	return nil
}

// Close releases the OCR engine
func (a *app) Close() {
	if a.extractor != nil {
		if err := a.extractor.Close(); err != nil {
			slog.Warn("closing OCR engine", "error", err)
		}
	}
}
