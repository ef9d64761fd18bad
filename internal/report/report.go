// Package report renders resolved items for the terminal and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/pipeline"
)

const rule = "============================================================"

// Renderer formats outcomes
type Renderer struct {
	printer *message.Printer
	verbose bool
}

// NewRenderer creates a renderer. Verbose adds the recognition trail.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{
		printer: message.NewPrinter(language.English),
		verbose: verbose,
	}
}

// RenderText writes the price block for an outcome. Failed outcomes render
// as a one-line user message.
func (r *Renderer) RenderText(w io.Writer, out *pipeline.Outcome) error {
	if out == nil {
		return nil
	}
	if out.Err != nil {
		_, err := fmt.Fprintf(w, "✗ %s\n", apperrors.UserMessage(out.Err))
		return err
	}
	if out.Item == nil {
		return nil
	}

	var b strings.Builder
	r.writeItem(&b, out.Item)
	if r.verbose && out.Query != nil {
		r.writeTrail(&b, out)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) writeItem(b *strings.Builder, item *model.Item) {
	b.WriteString(rule + "\n")
	fmt.Fprintf(b, "ITEM: %s\n", strings.ToUpper(item.Name))
	b.WriteString(rule + "\n")

	if item.ShortName != "" {
		fmt.Fprintf(b, "SHORT NAME: %s\n", item.ShortName)
	}

	flea := item.FleaPrice()
	if flea > 0 {
		fmt.Fprintf(b, "FLEA PRICE: %s\n", r.Roubles(flea))
	} else {
		b.WriteString("FLEA PRICE: N/A\n")
	}
	if item.BasePrice > 0 {
		fmt.Fprintf(b, "BASE PRICE: %s\n", r.Roubles(item.BasePrice))
	}
	fmt.Fprintf(b, "48H CHANGE: %+.2f%%\n", item.ChangeLast48hPercent)

	if item.Low24hPrice > 0 && item.High24hPrice > 0 {
		fmt.Fprintf(b, "24H RANGE: %s - %s\n", r.printer.Sprintf("%d", item.Low24hPrice), r.Roubles(item.High24hPrice))
	}

	if pps := item.PricePerSlot(); pps > 0 {
		fmt.Fprintf(b, "PER SLOT: %s/slot (%dx%d = %d slots)\n",
			r.Roubles(int(pps+0.5)), item.Width, item.Height, item.Slots())
	}

	if offer, ok := item.BestOffer(); ok && offer.Price > 0 {
		fmt.Fprintf(b, "BEST TRADER: %s - %s\n", offer.Vendor.Name, r.Roubles(offer.Price))
	}
	b.WriteString(rule + "\n")
}

func (r *Renderer) writeTrail(b *strings.Builder, out *pipeline.Outcome) {
	q := out.Query
	fmt.Fprintf(b, "read %q, corrected %q, matched %q (%s, %.2f)\n",
		q.Literal, q.Corrected, q.Name, q.Method, q.Score)
	fmt.Fprintf(b, "capture %s, recognize %s, lookup %s, total %s",
		round(out.Timings.Capture), round(out.Timings.Recognize), round(out.Timings.Lookup), round(out.Timings.Total))
	switch {
	case out.FrameReused:
		b.WriteString(" (frame reused)")
	case out.CacheHit:
		b.WriteString(" (cached)")
	}
	b.WriteString("\n")
}

// Roubles formats an amount with thousands separators
func (r *Renderer) Roubles(n int) string {
	return r.printer.Sprintf("%d ₽", n)
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}

// Record is the JSON form of one outcome
type Record struct {
	Source  string               `json:"source,omitempty"`
	Query   *model.ResolvedQuery `json:"query,omitempty"`
	Item    *model.Item          `json:"item,omitempty"`
	Summary *Summary             `json:"summary,omitempty"`
	Cached  bool                 `json:"cached"`
	Timings pipeline.Timings     `json:"timings"`
	Error   string               `json:"error,omitempty"`
	Code    string               `json:"code,omitempty"`
}

// Summary holds the derived price figures
type Summary struct {
	FleaPrice    int     `json:"flea_price"`
	PricePerSlot float64 `json:"price_per_slot"`
	Slots        int     `json:"slots"`
	BestTrader   string  `json:"best_trader,omitempty"`
	TraderPrice  int     `json:"trader_price,omitempty"`
}

// NewRecord converts an outcome. Source names the screenshot or input.
func NewRecord(source string, out *pipeline.Outcome, err error) Record {
	rec := Record{Source: source}
	if out != nil {
		rec.Query = out.Query
		rec.Item = out.Item
		rec.Cached = out.CacheHit
		rec.Timings = out.Timings
		if err == nil {
			err = out.Err
		}
	}
	if err != nil {
		rec.Error = err.Error()
		rec.Code = string(apperrors.CodeOf(err))
		return rec
	}
	if rec.Item != nil {
		s := &Summary{
			FleaPrice:    rec.Item.FleaPrice(),
			PricePerSlot: rec.Item.PricePerSlot(),
			Slots:        rec.Item.Slots(),
		}
		if offer, ok := rec.Item.BestOffer(); ok {
			s.BestTrader = offer.Vendor.Name
			s.TraderPrice = offer.Price
		}
		rec.Summary = s
	}
	return rec
}

// RenderJSON writes v as indented JSON
func (r *Renderer) RenderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// WriteJSON writes v to path, creating parent directories
func (r *Renderer) WriteJSON(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := r.RenderJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
