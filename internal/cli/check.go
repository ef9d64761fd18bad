package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pricelens/internal/catalog"
)

var checkTimeout time.Duration

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the price catalog is reachable",
	Long: `Check sends a minimal query to the configured catalog endpoint through the
configured proxy and reports how long it took.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return checkCatalog(ctx, catalog.NewClient(cfg.Catalog), cfg.Catalog.Endpoint, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 15*time.Second, "give up after this long")
}

type pinger interface {
	Ping(ctx context.Context) error
}

func checkCatalog(ctx context.Context, p pinger, endpoint string, w io.Writer) error {
	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		fmt.Fprintf(w, "✗ %s unreachable: %v\n", endpoint, err)
		return fmt.Errorf("catalog check failed: %w", err)
	}
	fmt.Fprintf(w, "✓ %s answered in %v\n", endpoint, time.Since(start).Round(time.Millisecond))
	return nil
}
