package cli

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pricelens/internal/report"
)

var (
	pointerX       int
	pointerY       int
	resolveJSON    bool
	resolveTimeout time.Duration
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <screenshot>",
	Short: "Resolve the tooltip under a pointer in a saved screenshot",
	Long: `Resolve runs one capture cycle against a screenshot file:
- Compute the tooltip region around the pointer
- Preprocess and recognize the text in it
- Pick the item name closest to the pointer and repair OCR misreads
- Match it against the known item list and look up its price

Example:
  pricelens resolve stash.png --x 812 --y 455
  pricelens resolve stash.png --x 812 --y 455 --mode pve --json`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().IntVar(&pointerX, "x", 0, "pointer x in screenshot pixels")
	resolveCmd.Flags().IntVar(&pointerY, "y", 0, "pointer y in screenshot pixels")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print a JSON record instead of the price block")
	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", time.Minute, "overall timeout")
	_ = resolveCmd.MarkFlagRequired("x")
	_ = resolveCmd.MarkFlagRequired("y")
}

func runResolve(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), resolveTimeout)
	defer cancel()

	a, err := newApp(ctx, appOptions{ocr: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.waitForEngine(ctx); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Resolving %s at (%d, %d)...\n", path, pointerX, pointerY)
	}

	out, err := a.pipeline.RunScreenshot(ctx, path, image.Pt(pointerX, pointerY))
	r := report.NewRenderer(verbose)
	if resolveJSON {
		if jerr := r.RenderJSON(os.Stdout, report.NewRecord(path, out, err)); jerr != nil {
			return jerr
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}
	return r.RenderText(os.Stdout, out)
}
