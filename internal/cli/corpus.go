package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pricelens/internal/cache"
	"github.com/ppiankov/pricelens/internal/corpus"
)

// corpusCmd represents the corpus command
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the cached list of known item names",
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the cached item list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		a, err := newApp(ctx, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		printStats(a.corpus.Stats(), a.disk.Dir())
		return nil
	},
}

var corpusRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refetch the item list from the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		a, err := newApp(ctx, appOptions{skipCorpus: true})
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(os.Stderr, "⚙️  Fetching item names...\n")
		if err := a.corpus.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Refreshed item list\n\n")
		printStats(a.corpus.Stats(), a.disk.Dir())
		return nil
	},
}

var corpusClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached item list",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return clearCorpus(cache.NewDiskCache(cfg.Cache.CorpusDir, -1), os.Stdout)
	},
}

// clearCorpus removes the snapshot directory; the next run refetches
func clearCorpus(disk *cache.DiskCache, w io.Writer) error {
	if err := disk.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", disk.Dir(), err)
	}
	fmt.Fprintf(w, "✓ Removed %s\n", disk.Dir())
	return nil
}

func printStats(st corpus.Stats, dir string) {
	fmt.Printf("  Items:      %d\n", st.Size)
	fmt.Printf("  Source:     %s\n", st.Source)
	if st.Version != "" {
		fmt.Printf("  Version:    %s\n", st.Version)
	}
	if !st.FetchedAt.IsZero() {
		fmt.Printf("  Fetched:    %s (%s ago)\n", st.FetchedAt.Format(time.RFC3339), time.Since(st.FetchedAt).Round(time.Minute))
	}
	fmt.Printf("  Cache dir:  %s\n", dir)
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusRefreshCmd)
	corpusCmd.AddCommand(corpusClearCmd)
}
