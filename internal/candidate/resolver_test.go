package candidate

import (
	"math"
	"testing"

	"github.com/ppiankov/pricelens/internal/model"
)

// at returns a fragment whose box centroid lies at (x, y)
func at(text string, x, y float64) model.TextFragment {
	return model.TextFragment{Text: text, Box: model.RectPolygon(x-5, y-5, 10, 10)}
}

func TestResolvePicksClosestNonBlacklisted(t *testing.T) {
	r := NewResolver()

	fragments := []model.TextFragment{
		at("M4AI", 12, 0),
		at("EQUIP", 3, 0),
		at("DISCARD", 40, 0),
	}

	got, ok := r.Resolve(fragments, model.Point{})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if got != "M4AI" {
		t.Errorf("expected M4AI, got %q", got)
	}
}

func TestResolveDuplicateDroppedBeforeDistance(t *testing.T) {
	r := NewResolver()

	fragments := []model.TextFragment{
		at("foo", 10, 0),
		at("bar", 5, 0),
		at("FOO", 2, 0),
	}

	got, ok := r.Resolve(fragments, model.Point{})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if got != "bar" {
		t.Errorf("expected bar, got %q", got)
	}
}

func TestRankFiltering(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name      string
		fragments []model.TextFragment
		want      []string
	}{
		{
			name:      "too short",
			fragments: []model.TextFragment{at("ok", 0, 0), at("  x ", 1, 0), at("Tushonka", 50, 0)},
			want:      []string{"Tushonka"},
		},
		{
			name:      "whitespace trimmed before length check",
			fragments: []model.TextFragment{at("  ab  ", 0, 0), at(" GPU ", 10, 0)},
			want:      []string{"GPU"},
		},
		{
			name: "blacklist is case-insensitive substring",
			fragments: []model.TextFragment{
				at("Inspect", 0, 0),
				at("Edit Build", 1, 0),
				at("Filter by item", 2, 0),
				at("Graphics card", 30, 0),
			},
			want: []string{"Graphics card"},
		},
		{
			name: "dedupe keeps first occurrence before ranking",
			fragments: []model.TextFragment{
				at("Bitcoin", 20, 0),
				at("BITCOIN", 5, 0),
				at("LEDX", 10, 0),
			},
			want: []string{"LEDX", "Bitcoin"},
		},
		{
			name:      "nothing survives",
			fragments: []model.TextFragment{at("Sort", 0, 0), at("ab", 1, 1)},
			want:      nil,
		},
		{
			name:      "empty input",
			fragments: nil,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Rank(tt.fragments, model.Point{})
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d candidates, got %d: %+v", len(tt.want), len(got), got)
			}
			for i, w := range tt.want {
				if got[i].Text != w {
					t.Errorf("candidate %d: expected %q, got %q", i, w, got[i].Text)
				}
			}
		})
	}
}

func TestRankDistances(t *testing.T) {
	r := NewResolver()

	got := r.Rank([]model.TextFragment{at("Salewa", 3, 4)}, model.Point{})
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if math.Abs(got[0].Distance-5) > 1e-9 {
		t.Errorf("expected distance 5, got %v", got[0].Distance)
	}
}

func TestRankTieKeepsInputOrder(t *testing.T) {
	r := NewResolver()

	fragments := []model.TextFragment{
		at("Alpha", 0, 10),
		at("Bravo", 10, 0),
		at("Charlie", 0, -10),
	}

	got := r.Rank(fragments, model.Point{})
	want := []string{"Alpha", "Bravo", "Charlie"}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("position %d: expected %q, got %q", i, w, got[i].Text)
		}
	}
}

func TestResolveNeverReturnsBlacklisted(t *testing.T) {
	r := NewResolver()

	for _, phrase := range DefaultBlacklist {
		fragments := []model.TextFragment{at(phrase, 0, 0), at("Item "+phrase, 1, 0)}
		if got, ok := r.Resolve(fragments, model.Point{}); ok {
			t.Errorf("blacklisted phrase %q resolved to %q", phrase, got)
		}
	}
}

func TestCustomBlacklist(t *testing.T) {
	r := NewResolver("Roubles")

	got, ok := r.Resolve([]model.TextFragment{at("12000 roubles", 0, 0), at("Inspect", 5, 0)}, model.Point{})
	if !ok || got != "Inspect" {
		t.Errorf("expected Inspect with custom blacklist, got %q (%v)", got, ok)
	}
}
