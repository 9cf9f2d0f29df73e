package parser

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

// QueryPlan is a tokenised query. Terms holds one normalised token per raw
// query word, in query order and including repeats.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

func Parse(query string) *QueryPlan {
	return &QueryPlan{
		Terms:    tokenizer.Tokenize(query),
		RawQuery: query,
	}
}

// Empty reports whether the query has no terms at all.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Canonical returns a form of the plan that is equal for every query with
// the same multiset of terms. Scores are sums over terms, so such queries
// always produce the same ranking.
func (p *QueryPlan) Canonical() string {
	terms := make([]string, len(p.Terms))
	copy(terms, p.Terms)
	sort.Strings(terms)
	return strings.Join(terms, "\x1f")
}
