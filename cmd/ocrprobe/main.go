// ocrprobe shows what each recognition pass reads around a pointer in a
// screenshot, and how the reading is ranked, corrected and matched. Used to
// tune the region offsets, passes and correction rules.
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/ppiankov/pricelens/internal/candidate"
	"github.com/ppiankov/pricelens/internal/capture"
	"github.com/ppiankov/pricelens/internal/correct"
	"github.com/ppiankov/pricelens/internal/match"
	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/ocr"
	"github.com/ppiankov/pricelens/internal/preprocess"
	"github.com/ppiankov/pricelens/internal/region"
)

var (
	pointerX  int
	pointerY  int
	dumpDir   string
	names     []string
	passes    []string
	language  string
	threshold float64
)

func main() {
	cmd := &cobra.Command{
		Use:   "ocrprobe <screenshot>",
		Short: "Show per-pass OCR output around a pointer",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	cmd.Flags().IntVar(&pointerX, "x", 0, "pointer x")
	cmd.Flags().IntVar(&pointerY, "y", 0, "pointer y")
	cmd.Flags().StringVar(&dumpDir, "dump", "", "directory to save the region and each variant")
	cmd.Flags().StringSliceVar(&names, "names", nil, "item names to match against")
	cmd.Flags().StringSliceVar(&passes, "passes", []string{preprocess.PassBinary, preprocess.PassInverted, preprocess.PassGray, preprocess.PassRaw}, "preprocessing passes")
	cmd.Flags().StringVar(&language, "lang", "eng", "tesseract language")
	cmd.Flags().Float64Var(&threshold, "threshold", match.DefaultThreshold, "match threshold")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := model.DefaultConfig()
	src, err := capture.OpenImageSource(args[0])
	if err != nil {
		return err
	}
	bounds, _ := src.Bounds()

	reg := region.NewCalculator(cfg.Capture).Compute(image.Pt(pointerX, pointerY), bounds)
	fmt.Printf("=== Region %v (pointer at %v in region) ===\n\n", reg.Rect(), reg.Anchor)

	img, err := src.Capture(ctx, reg.Rect())
	if err != nil {
		return err
	}

	variants, err := preprocess.New(passes, cfg.Capture.MinOCRHeight).Process(img)
	if err != nil {
		return err
	}
	if dumpDir != "" {
		dump(img, variants)
	}

	extractor := ocr.NewExtractor(ocr.NewTesseractEngine(language, cfg.OCR.TessdataPrefix), cfg.OCR.InitWait)
	extractor.Start()
	defer func() { _ = extractor.Close() }()

	var all []model.TextFragment
	for _, v := range variants {
		fmt.Printf("%s (scale %.2f)\n", v.Name, v.Scale)
		fmt.Println(strings.Repeat("-", 60))

		start := time.Now()
		found, err := extractor.Extract(ctx, []preprocess.Variant{v})
		if err != nil {
			fmt.Printf("  ✗ %v\n\n", err)
			continue
		}
		for _, f := range found {
			c := f.Box.Centroid()
			fmt.Printf("  %-32q conf %.2f  at (%.0f, %.0f)\n", f.Text, f.Confidence, c.X, c.Y)
		}
		fmt.Printf("  %d fragments in %v\n\n", len(found), time.Since(start).Round(time.Millisecond))
		all = append(all, found...)
	}

	ranked := candidate.NewResolver().Rank(all, reg.LocalPointer())
	fmt.Println("=== Candidates ===")
	if len(ranked) == 0 {
		fmt.Println("  none")
		return nil
	}
	corrector := correct.New()
	matcher := match.New(threshold)
	for i, c := range ranked {
		fixed := corrector.Correct(c.Text)
		m := matcher.Match(fixed, names)
		fmt.Printf("  %d. %-28q dist %6.1f  -> %-24q -> %q (%s %.2f)\n", i+1, c.Text, c.Distance, fixed, m.Name, m.Method, m.Score)
	}
	return nil
}

func dump(img image.Image, variants []preprocess.Variant) {
	if err := os.MkdirAll(dumpDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		return
	}
	save := func(name string, im image.Image) {
		path := filepath.Join(dumpDir, name+".png")
		if err := imaging.Save(im, path); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			return
		}
		fmt.Printf("✓ Wrote %s\n", path)
	}
	save("region", img)
	for _, v := range variants {
		save("variant_"+v.Name, v.Image)
	}
	fmt.Println()
}
