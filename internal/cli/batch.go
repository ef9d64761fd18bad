package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/report"
	"github.com/ppiankov/pricelens/internal/worker"
)

var (
	concurrency  int
	outputPath   string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Resolve many saved screenshots in parallel",
	Long: `Batch resolves every screenshot listed in a file:
- One "path x y" line per screenshot, x and y being the pointer position
- Relative paths are resolved against the list file's directory
- Blank lines and lines starting with # are skipped
- Results are written as one JSON array

Example:
  pricelens batch shots.txt
  pricelens batch shots.txt --concurrency 4 --output ./prices.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputPath, "output", "./pricelens-batch.json", "output JSON path")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  pricelens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", outputPath)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	shots, err := worker.ReadShotsFromFile(file)
	if err != nil {
		return fmt.Errorf("read shots: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d screenshots\n", len(shots))

	a, err := newApp(ctx, appOptions{ocr: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.waitForEngine(ctx); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Processing screenshots with %d workers...\n\n", concurrency)

	processor := worker.NewBatchProcessor(a.pipeline, concurrency)
	results := processor.Process(ctx, shots)

	r := report.NewRenderer(verbose)
	records := make([]report.Record, 0, len(results))
	successCount := 0
	failureCount := 0

	for _, result := range results {
		name := filepath.Base(result.Shot.Path)
		records = append(records, report.NewRecord(result.Shot.Path, result.Outcome, result.Error))

		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", name, apperrors.UserMessage(result.Error))
			continue
		}

		successCount++
		item := result.Outcome.Item
		fmt.Fprintf(os.Stderr, "✓ %s: %s (%s)\n", name, item.Name, r.Roubles(item.FleaPrice()))
	}

	if err := r.WriteJSON(outputPath, records); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d screenshots\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputPath)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
