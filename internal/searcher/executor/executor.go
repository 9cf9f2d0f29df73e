package executor

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
)

// SearchResult is the answer to one query. Matched is false when no query
// term occurs in the corpus; Results is then empty.
type SearchResult struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	Matched   bool               `json:"matched"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
}

type Executor struct {
	corpus *indexer.Corpus
	logger *slog.Logger
}

func New(corpus *indexer.Corpus) *Executor {
	return &Executor{
		corpus: corpus,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Corpus returns the corpus queries run against.
func (e *Executor) Corpus() *indexer.Corpus {
	return e.corpus
}

func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := &SearchResult{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		Results:   []ranker.ScoredDoc{},
		TermStats: make(map[string]int),
	}
	if plan.Empty() {
		return result, nil
	}
	for _, term := range plan.Terms {
		if df := e.corpus.DocFreq(term); df > 0 {
			result.TermStats[term] = df
		}
	}

	all, ok := e.corpus.RankTerms(plan.Terms, 0)
	if !ok {
		e.logger.Debug("query matched nothing", "query", plan.RawQuery, "terms", plan.Terms)
		return result, nil
	}
	result.Matched = true
	result.TotalHits = len(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	result.Results = all

	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"hits", result.TotalHits,
		"results", len(result.Results),
	)
	return result, nil
}
