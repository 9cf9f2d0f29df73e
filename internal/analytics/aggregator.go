package analytics

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
)

const (
	maxLatencySamples = 10000
	topQueries        = 10
)

type AggregatedStats struct {
	TotalSearches    int64        `json:"total_searches"`
	NoMatchCount     int64        `json:"no_match_count"`
	CacheHits        int64        `json:"cache_hits"`
	CacheMisses      int64        `json:"cache_misses"`
	AvgLatencyMs     float64      `json:"avg_latency_ms"`
	P50LatencyMs     int64        `json:"p50_latency_ms"`
	P95LatencyMs     int64        `json:"p95_latency_ms"`
	P99LatencyMs     int64        `json:"p99_latency_ms"`
	TopQueries       []QueryCount `json:"top_queries"`
	NoMatchQueries   []QueryCount `json:"no_match_queries"`
	CorpusBuilds     int64        `json:"corpus_builds"`
	DocumentsIndexed int          `json:"documents_indexed"`
	Fingerprint      string       `json:"fingerprint,omitempty"`
	QueriesPerMinute float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds analytics events into running statistics. Queries are
// counted by their normalised terms so that "Dogs!" and "dogs" are one entry.
type Aggregator struct {
	mu             sync.RWMutex
	totalSearches  int64
	noMatches      int64
	cacheHits      int64
	cacheMisses    int64
	latencies      []int64
	queryCounts    map[string]int64
	noMatchQueries map[string]int64
	corpusBuilds   int64
	lastCorpus     CorpusEvent
	startTime      time.Time
	logger         *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:      make([]int64, 0, 1024),
		queryCounts:    make(map[string]int64),
		noMatchQueries: make(map[string]int64),
		startTime:      time.Now(),
		logger:         slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka handler feeding agg. Messages with an unknown
// type or a malformed body are logged and acknowledged.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		switch EventType(msg.Type) {
		case EventSearch:
			event, err := kafka.DecodeJSON[SearchEvent](msg.Value)
			if err != nil {
				agg.logger.Error("failed to decode search event", "error", err)
				return nil
			}
			agg.RecordSearch(event)
		case EventCorpusBuilt:
			event, err := kafka.DecodeJSON[CorpusEvent](msg.Value)
			if err != nil {
				agg.logger.Error("failed to decode corpus event", "error", err)
				return nil
			}
			agg.RecordCorpus(event)
		default:
			agg.logger.Warn("ignoring analytics event", "type", msg.Type)
		}
		return nil
	}
}

func (a *Aggregator) RecordSearch(event SearchEvent) {
	key := queryKey(event)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSearches++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if len(a.latencies) == maxLatencySamples {
		copy(a.latencies, a.latencies[1:])
		a.latencies = a.latencies[:maxLatencySamples-1]
	}
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[key]++
	if !event.Matched {
		a.noMatches++
		a.noMatchQueries[key]++
	}
}

func (a *Aggregator) RecordCorpus(event CorpusEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.corpusBuilds++
	if event.Timestamp.Before(a.lastCorpus.Timestamp) {
		return
	}
	a.lastCorpus = event
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:    a.totalSearches,
		NoMatchCount:     a.noMatches,
		CacheHits:        a.cacheHits,
		CacheMisses:      a.cacheMisses,
		CorpusBuilds:     a.corpusBuilds,
		DocumentsIndexed: a.lastCorpus.Documents,
		Fingerprint:      a.lastCorpus.Fingerprint,
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, topQueries)
	stats.NoMatchQueries = topN(a.noMatchQueries, topQueries)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func queryKey(event SearchEvent) string {
	if len(event.Terms) == 0 {
		return event.Query
	}
	return strings.Join(event.Terms, " ")
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
