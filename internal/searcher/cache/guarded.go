package cache

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

// GuardedStore bounds every call to the wrapped Store with a deadline and
// routes it through a circuit breaker, so a slow or unreachable Redis costs
// searches at most opTimeout and, once the breaker opens, nothing at all.
type GuardedStore struct {
	store     Store
	breaker   *resilience.CircuitBreaker
	opTimeout time.Duration
}

func NewGuardedStore(store Store, breaker *resilience.CircuitBreaker, opTimeout time.Duration) *GuardedStore {
	return &GuardedStore{store: store, breaker: breaker, opTimeout: opTimeout}
}

func (g *GuardedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)
	err := g.call(ctx, "cache get", func(ctx context.Context) error {
		var err error
		data, found, err = g.store.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return data, found, nil
}

func (g *GuardedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.call(ctx, "cache set", func(ctx context.Context) error {
		return g.store.Set(ctx, key, value, ttl)
	})
}

// DeleteByPrefix is not bounded by opTimeout; invalidation scans the whole
// keyspace.
func (g *GuardedStore) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = g.store.DeleteByPrefix(ctx, prefix)
		return err
	})
	return deleted, err
}

// State reports the breaker state.
func (g *GuardedStore) State() resilience.State {
	return g.breaker.State()
}

func (g *GuardedStore) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.WithTimeout(ctx, g.opTimeout, name, fn)
	})
}
