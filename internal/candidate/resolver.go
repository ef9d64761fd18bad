// Package candidate picks the item name out of the recognized tooltip text.
package candidate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/pricelens/internal/model"
)

// MinLength is the shortest text considered an item name
const MinLength = 3

// DefaultBlacklist holds tooltip action labels and menu chrome. Matching is a
// case-insensitive substring test, so entries must not occur inside item names.
var DefaultBlacklist = []string{
	"inspect",
	"examine",
	"equip",
	"discard",
	"filter",
	"sort",
	"search",
	"modding",
	"edit build",
	"context menu",
}

// Candidate is a fragment that survived filtering, with its distance to the pointer
type Candidate struct {
	Text     string
	Distance float64
	Fragment model.TextFragment
}

// Resolver ranks fragments by proximity to the pointer
type Resolver struct {
	blacklist []string
}

// NewResolver creates a resolver. With no phrases, DefaultBlacklist is used.
func NewResolver(blacklist ...string) *Resolver {
	if len(blacklist) == 0 {
		blacklist = DefaultBlacklist
	}
	lower := make([]string, len(blacklist))
	for i, p := range blacklist {
		lower[i] = strings.ToLower(p)
	}
	return &Resolver{blacklist: lower}
}

// Rank filters the fragments and returns the survivors ordered by distance from
// pointer (region-local coordinates). Case-insensitive duplicates keep their
// first occurrence in input order, and equal distances keep input order.
func (r *Resolver) Rank(fragments []model.TextFragment, pointer model.Point) []Candidate {
	candidates := make([]Candidate, 0, len(fragments))
	seen := make(map[string]bool, len(fragments))
	for _, f := range fragments {
		text := strings.TrimSpace(f.Text)
		if utf8.RuneCountInString(text) < MinLength {
			continue
		}
		key := strings.ToLower(text)
		if r.blacklisted(key) || seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, Candidate{
			Text:     text,
			Distance: f.Box.Centroid().Distance(pointer),
			Fragment: f,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}

// Resolve returns the text closest to the pointer, or false when nothing survives
func (r *Resolver) Resolve(fragments []model.TextFragment, pointer model.Point) (string, bool) {
	ranked := r.Rank(fragments, pointer)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].Text, true
}

func (r *Resolver) blacklisted(lower string) bool {
	for _, phrase := range r.blacklist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
