package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/tracing"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error)
}

// CorpusInfo describes the corpus being served. *indexer.Corpus implements
// it.
type CorpusInfo interface {
	Dir() string
	DocumentCount() int
	VocabularySize() int
	Skipped() []string
	Fingerprint() string
	BuildDuration() time.Duration
	DocFreq(term string) int
	IDF(term string) float64
}

// SearchTracker receives one event per answered search.
type SearchTracker interface {
	TrackSearch(event analytics.SearchEvent)
}

type Handler struct {
	executor     SearchExecutor
	corpus       CorpusInfo
	cache        *cache.QueryCache
	tracker      SearchTracker
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func New(exec SearchExecutor, corpus CorpusInfo, cfg config.SearchConfig) *Handler {
	return &Handler{
		executor:     exec,
		corpus:       corpus,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// WithCache enables result caching.
func (h *Handler) WithCache(c *cache.QueryCache) *Handler {
	h.cache = c
	return h
}

// WithTracker enables analytics events.
func (h *Handler) WithTracker(t SearchTracker) *Handler {
	h.tracker = t
	return h
}

// WithMetrics enables search metrics.
func (h *Handler) WithMetrics(m *metrics.Metrics) *Handler {
	h.metrics = m
	return h
}

// Search serves GET ?q=...&limit=n. A query that matches no document is
// answered with 404.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, 0, "query parameter 'q' is required"))
		return
	}
	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx, span := tracing.Start(ctx, "search")
	defer func() {
		span.End()
		span.Log(ctx, log)
	}()

	_, parseSpan := tracing.Start(ctx, "parse")
	plan := parser.Parse(query)
	parseSpan.SetAttr("terms", len(plan.Terms))
	parseSpan.End()

	execute := func() (*executor.SearchResult, error) {
		ctx, execSpan := tracing.Start(ctx, "execute")
		defer execSpan.End()
		return h.executor.Execute(ctx, plan, limit)
	}
	var (
		result   *executor.SearchResult
		cacheHit bool
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, limit, execute)
	} else {
		result, err = execute()
	}
	latency := time.Since(start)
	span.SetAttr("cache_hit", cacheHit)

	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.observe(metrics.ResultError, cacheHit, latency, 0)
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.New(apperrors.ErrTimeout, 0, "search timed out")
		}
		h.writeError(w, err)
		return
	}

	outcome := metrics.ResultMatched
	if !result.Matched {
		outcome = metrics.ResultNoMatch
	}
	h.observe(outcome, cacheHit, latency, len(result.Results))
	log.Info("search completed",
		"query", query,
		"matched", result.Matched,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.tracker != nil {
		h.tracker.TrackSearch(analytics.SearchEvent{
			Query:       query,
			Terms:       plan.Terms,
			Matched:     result.Matched,
			TotalHits:   result.TotalHits,
			Returned:    len(result.Results),
			LatencyMs:   latency.Milliseconds(),
			CacheHit:    cacheHit,
			Fingerprint: h.corpus.Fingerprint(),
			Timestamp:   time.Now().UTC(),
			RequestID:   middleware.GetRequestID(ctx),
		})
	}

	if !result.Matched {
		h.writeError(w, apperrors.ErrNoMatch)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Corpus serves corpus statistics.
func (h *Handler) Corpus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"dir":             h.corpus.Dir(),
		"documents":       h.corpus.DocumentCount(),
		"vocabulary_size": h.corpus.VocabularySize(),
		"skipped":         h.corpus.Skipped(),
		"fingerprint":     h.corpus.Fingerprint(),
		"build_ms":        h.corpus.BuildDuration().Milliseconds(),
	})
}

// Term serves the document frequency and IDF of the {term} path value.
func (h *Handler) Term(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	h.writeJSON(w, http.StatusOK, map[string]any{
		"term":               term,
		"normalized":         tokenizer.Normalize(term),
		"document_frequency": h.corpus.DocFreq(term),
		"idf":                h.corpus.IDF(term),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "caching is disabled"})
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache invalidation failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return h.defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, apperrors.New(apperrors.ErrInvalidInput, 0, "limit must be a positive integer")
	}
	return min(limit, h.maxResults), nil
}

func (h *Handler) observe(outcome string, cacheHit bool, latency time.Duration, returned int) {
	if h.metrics == nil {
		return
	}
	cacheStatus := "miss"
	switch {
	case h.cache == nil:
		cacheStatus = "disabled"
	case cacheHit:
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	default:
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	if outcome != metrics.ResultError {
		h.metrics.SearchResultsCount.Observe(float64(returned))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError answers with the status mapped from err and its message.
// Unexpected errors are reported without detail.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
	case status == http.StatusInternalServerError:
		message = "search failed"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
