package analytics

import "time"

type EventType string

const (
	EventSearch      EventType = "search"
	EventCorpusBuilt EventType = "corpus_built"
)

// SearchEvent records one answered query.
type SearchEvent struct {
	Query       string    `json:"query"`
	Terms       []string  `json:"terms"`
	Matched     bool      `json:"matched"`
	TotalHits   int       `json:"total_hits"`
	Returned    int       `json:"returned"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id"`
}

// CorpusEvent records a completed corpus build.
type CorpusEvent struct {
	Dir         string    `json:"dir"`
	Documents   int       `json:"documents"`
	Skipped     int       `json:"skipped"`
	Vocabulary  int       `json:"vocabulary"`
	Fingerprint string    `json:"fingerprint"`
	BuildMs     int64     `json:"build_ms"`
	Timestamp   time.Time `json:"timestamp"`
}
