// Package match maps corrected OCR text onto canonical item names.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ppiankov/pricelens/internal/model"
)

// DefaultThreshold is the minimum score for a fuzzy match
const DefaultThreshold = 0.6

// Result is the outcome of matching one string
type Result struct {
	Name   string
	Score  float64
	Method model.MatchMethod
}

// Matcher resolves text against a corpus of canonical names
type Matcher struct {
	threshold float64
}

// New creates a matcher. A non-positive threshold falls back to DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured minimum score
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the best corpus entry for text. An exact case-insensitive hit wins
// outright. Otherwise the best substring containment (scored by length ratio) is
// taken, and when it falls short of the threshold every entry is scored by
// similarity ratio. Below the threshold the input is returned unchanged.
func (m *Matcher) Match(text string, corpus []string) Result {
	miss := Result{Name: text, Method: model.MatchNone}
	if text == "" || len(corpus) == 0 {
		return miss
	}

	lower := strings.ToLower(text)
	for _, entry := range corpus {
		if strings.EqualFold(entry, text) {
			return Result{Name: entry, Score: 1, Method: model.MatchExact}
		}
	}

	best := miss
	textLen := float64(utf8.RuneCountInString(lower))
	for _, entry := range corpus {
		entryLower := strings.ToLower(entry)
		if !strings.Contains(entryLower, lower) {
			continue
		}
		score := textLen / float64(utf8.RuneCountInString(entryLower))
		if score > best.Score {
			best = Result{Name: entry, Score: score, Method: model.MatchSubstring}
		}
	}

	if best.Score < m.threshold {
		if sim := m.similar(lower, corpus); sim.Score > best.Score {
			best = sim
		}
	}

	if best.Score < m.threshold {
		miss.Score = best.Score
		return miss
	}
	return best
}

// similar scans every entry with difflib's ratio, using its cheap upper bounds to
// skip entries that cannot beat the current best.
func (m *Matcher) similar(lower string, corpus []string) Result {
	var best Result

	sm := difflib.NewMatcher(nil, nil)
	sm.SetSeq2(runes(lower))
	for _, entry := range corpus {
		sm.SetSeq1(runes(strings.ToLower(entry)))
		if sm.RealQuickRatio() <= best.Score || sm.QuickRatio() <= best.Score {
			continue
		}
		if r := sm.Ratio(); r > best.Score {
			best = Result{Name: entry, Score: r, Method: model.MatchSimilarity}
		}
	}
	return best
}

// runes splits s into one-character strings, the element type difflib compares
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
