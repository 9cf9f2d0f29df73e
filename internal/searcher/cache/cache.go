package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
)

const (
	keyPrefix         = "tfidf:search:"
	maxSharedAttempts = 3
)

// Store is the key-value backend of the cache. *redis.Client implements it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// QueryCache caches search results per corpus. Keys include the corpus
// fingerprint, so results computed against other content are never served.
type QueryCache struct {
	store       Store
	ttl         time.Duration
	fingerprint string
	group       singleflight.Group
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

func New(store Store, fingerprint string, ttl time.Duration) *QueryCache {
	return &QueryCache{
		store:       store,
		ttl:         ttl,
		fingerprint: fingerprint,
		logger:      slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, bool) {
	key := c.buildKey(plan, limit)
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	// The stored result belongs to whichever query text populated it.
	result.Query = plan.RawQuery
	result.Terms = plan.Terms
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", plan.RawQuery, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, limit int, result *executor.SearchResult) {
	key := c.buildKey(plan, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for plan or computes and stores it.
// Concurrent misses for the same key share one computation. computeFn runs
// under its caller's context; when a shared computation fails because that
// caller went away, the callers still waiting run their own.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	limit int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, plan, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(plan, limit)
	var (
		val    any
		err    error
		shared bool
	)
	for attempt := 1; ; attempt++ {
		val, err, shared = c.group.Do(key, func() (any, error) {
			result, err := computeFn()
			if err != nil {
				return nil, err
			}
			c.Set(ctx, plan, limit, result)
			return result, nil
		})
		if err == nil || !shared || ctx.Err() != nil || !isContextErr(err) || attempt == maxSharedAttempts {
			break
		}
		c.logger.Debug("shared computation canceled, retrying", "key", key, "error", err)
	}
	if err != nil {
		return nil, false, err
	}
	result := *val.(*executor.SearchResult)
	result.Query = plan.RawQuery
	result.Terms = plan.Terms
	return &result, false, nil
}

// Invalidate removes every cached result.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.DeleteByPrefix(ctx, keyPrefix)
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *QueryCache) buildKey(plan *parser.QueryPlan, limit int) string {
	raw := strings.Join([]string{c.fingerprint, plan.Canonical(), strconv.Itoa(limit)}, "|")
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
