// Package store persists aggregated analytics snapshots to PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/postgres"
)

const createSnapshotsTable = `CREATE TABLE IF NOT EXISTS analytics_snapshots (
	id          BIGSERIAL PRIMARY KEY,
	fingerprint TEXT NOT NULL DEFAULT '',
	data        JSONB NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createSnapshotsIndex = `CREATE INDEX IF NOT EXISTS analytics_snapshots_captured_at_idx
	ON analytics_snapshots (captured_at DESC)`

// Snapshot is one persisted copy of the aggregate.
type Snapshot struct {
	ID         int64                     `json:"id"`
	CapturedAt time.Time                 `json:"captured_at"`
	Stats      analytics.AggregatedStats `json:"stats"`
}

type Store struct {
	db        *postgres.Client
	retention int
	logger    *slog.Logger
}

// New returns a Store keeping at most retention snapshots; zero keeps all.
func New(db *postgres.Client, retention int) *Store {
	return &Store{
		db:        db,
		retention: retention,
		logger:    slog.Default().With("component", "analytics-store"),
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.Migrate(ctx, createSnapshotsTable, createSnapshotsIndex); err != nil {
		return fmt.Errorf("ensuring analytics schema: %w", err)
	}
	return nil
}

// SaveSnapshot inserts stats and prunes snapshots beyond the retention.
func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO analytics_snapshots (fingerprint, data, captured_at) VALUES ($1, $2, $3)`,
			stats.Fingerprint, data, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("inserting snapshot: %w", err)
		}
		if s.retention <= 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM analytics_snapshots WHERE id NOT IN (
				SELECT id FROM analytics_snapshots ORDER BY captured_at DESC LIMIT $1
			)`,
			s.retention,
		); err != nil {
			return fmt.Errorf("pruning snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Debug("analytics snapshot saved",
		"total_searches", stats.TotalSearches,
		"documents_indexed", stats.DocumentsIndexed,
	)
	return nil
}

// LatestSnapshot loads the most recent snapshot. It returns nil, nil when
// none exists yet.
func (s *Store) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT id, captured_at, data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT 1`,
	)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns the last limit snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, captured_at, data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0, limit)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, rows.Err()
}

// StartPeriodicSave snapshots agg every interval until ctx is cancelled,
// then saves a final snapshot.
func (s *Store) StartPeriodicSave(ctx context.Context, agg *analytics.Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.SaveSnapshot(shutdownCtx, agg.Stats()); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval, "retention", s.retention)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap Snapshot
		data []byte
	)
	if err := row.Scan(&snap.ID, &snap.CapturedAt, &data); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &snap.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot %d: %w", snap.ID, err)
	}
	return &snap, nil
}
