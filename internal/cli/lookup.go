package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/report"
)

var (
	lookupJSON    bool
	lookupTimeout time.Duration
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <item name>",
	Short: "Look up a typed item name",
	Long: `Lookup skips capture and recognition: the name is corrected, matched
against the known item list and priced.

Example:
  pricelens lookup m4a1
  pricelens lookup "6813 plate" --mode pve`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print a JSON record instead of the price block")
	lookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 30*time.Second, "overall timeout")
}

func runLookup(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
	defer cancel()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.pipeline.Lookup(ctx, name, model.GameMode(""))
	r := report.NewRenderer(verbose)
	if lookupJSON {
		if jerr := r.RenderJSON(os.Stdout, report.NewRecord(name, out, err)); jerr != nil {
			return jerr
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	return r.RenderText(os.Stdout, out)
}
