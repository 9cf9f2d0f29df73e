package ranker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRank(t *testing.T) {
	scores := map[string]float64{
		"docs/b.txt": 0.5,
		"docs/a.txt": 0.5,
		"docs/c.txt": 0.9,
		"docs/d.txt": 0.1,
	}
	cases := []struct {
		name  string
		limit int
		want  []ScoredDoc
	}{
		{
			name:  "no limit",
			limit: 0,
			want: []ScoredDoc{
				{DocID: "docs/c.txt", Score: 0.9},
				{DocID: "docs/a.txt", Score: 0.5},
				{DocID: "docs/b.txt", Score: 0.5},
				{DocID: "docs/d.txt", Score: 0.1},
			},
		},
		{
			name:  "limit inside tie",
			limit: 2,
			want: []ScoredDoc{
				{DocID: "docs/c.txt", Score: 0.9},
				{DocID: "docs/a.txt", Score: 0.5},
			},
		},
		{
			name:  "limit above size",
			limit: 10,
			want: []ScoredDoc{
				{DocID: "docs/c.txt", Score: 0.9},
				{DocID: "docs/a.txt", Score: 0.5},
				{DocID: "docs/b.txt", Score: 0.5},
				{DocID: "docs/d.txt", Score: 0.1},
			},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Rank(scores, tt.limit)); diff != "" {
				t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil, 0); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}

func TestDocIDs(t *testing.T) {
	docs := []ScoredDoc{{DocID: "x", Score: 2}, {DocID: "y", Score: 1}}
	if diff := cmp.Diff([]string{"x", "y"}, DocIDs(docs)); diff != "" {
		t.Errorf("DocIDs() mismatch (-want +got):\n%s", diff)
	}
}
