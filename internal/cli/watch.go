package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pricelens/internal/capture"
	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/report"
	"github.com/ppiankov/pricelens/internal/session"
	"github.com/ppiankov/pricelens/internal/worker"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Capture tooltips from the live screen",
	Long: `Watch reads trigger signals from stdin, one per line:
  a, arm       arm at the current pointer (again to cancel)
  c, capture   capture the tooltip under the pointer and price it
  x, cancel    leave the armed state
  q, quit      exit

Bind a global hotkey to write these lines to the process, or type them.
Only one capture runs at a time; triggers during a capture are dropped.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{source: capture.NewScreenSource(), ocr: true})
	if err != nil {
		return err
	}
	defer a.Close()

	dispatcher := worker.NewDispatcher(ctx, 4)
	defer dispatcher.Close()

	s := session.New(capture.RobotPointer{}, a.pipeline, dispatcher)
	fmt.Fprintf(os.Stderr, "✓ Ready (mode: %s). Type a to arm, c to capture, q to quit.\n", a.pipeline.Mode())

	return watchLoop(ctx, s, os.Stdin, os.Stdout, report.NewRenderer(verbose))
}

// watchLoop is the interface loop: it turns input lines into session
// signals and renders cycle results as they arrive
func watchLoop(ctx context.Context, s *session.Session, in io.Reader, out io.Writer, r *report.Renderer) error {
	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case input <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	var lines <-chan string = input

	// cycles dispatched but not yet rendered; input ending waits for them
	pending := 0
	for {
		if lines == nil && pending == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil

		case res, ok := <-s.Results():
			if !ok {
				return nil
			}
			pending--
			cycle := res.(*session.CycleResult)
			if err := r.RenderText(out, cycle.Outcome); err != nil {
				return err
			}
			if cycle.Error != nil {
				slog.Debug("cycle failed", "seq", cycle.Seq, "error", cycle.Error)
			}

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			dispatched, quit, err := handleSignal(s, line, out)
			if err != nil {
				fmt.Fprintf(out, "✗ %s\n", apperrors.UserMessage(err))
			}
			if dispatched {
				pending++
			}
			if quit {
				return nil
			}
		}
	}
}

// handleSignal applies one input line and reports whether a cycle was
// dispatched and whether to quit
func handleSignal(s *session.Session, line string, out io.Writer) (dispatched, quit bool, err error) {
	switch strings.ToLower(line) {
	case "":
		return false, false, nil
	case "a", "arm":
		action, err := s.Arm()
		if err != nil {
			return false, false, err
		}
		if at, ok := s.ArmedAt(); ok {
			fmt.Fprintf(out, "● armed at (%d, %d)\n", at.X, at.Y)
		} else {
			fmt.Fprintf(out, "○ %s\n", action)
		}
	case "c", "capture":
		action, err := s.Capture()
		if err != nil {
			return false, false, err
		}
		switch action {
		case session.ActionDispatched:
			dispatched = true
			fmt.Fprintf(out, "⚙️  capturing...\n")
		case session.ActionDropped:
			fmt.Fprintf(out, "○ busy, capture dropped\n")
		case session.ActionIgnored:
			fmt.Fprintf(out, "○ not armed\n")
		}
	case "x", "cancel":
		s.Cancel()
		fmt.Fprintf(out, "○ cancelled\n")
	case "q", "quit", "exit":
		return false, true, nil
	default:
		fmt.Fprintf(out, "? unknown command %q\n", line)
	}
	return dispatched, false, nil
}
