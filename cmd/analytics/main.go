// Command analytics consumes search and corpus events from Kafka, aggregates
// them in memory and serves the aggregate at GET /api/v1/analytics. When
// PostgreSQL is reachable, snapshots of the aggregate are saved periodically
// and served at GET /api/v1/analytics/snapshots.
//
// Usage:
//
//	go run ./cmd/analytics [--config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

const snapshotRetention = 1440

var connectRetry = resilience.RetryConfig{
	MaxAttempts:    4,
	InitialDelay:   500 * time.Millisecond,
	MaxDelay:       5 * time.Second,
	JitterFraction: 0.1,
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file")
	port := pflag.IntP("port", "p", 8081, "HTTP port")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", *port, "topic", cfg.Kafka.Topics.SearchEvents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := m.StartServer(cfg.Metrics.Port + 1)
		defer shutdownMetrics(context.Background())
	}

	aggregator := analytics.NewAggregator()
	handle := analytics.HandleEvent(aggregator)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents, func(ctx context.Context, msg kafka.Message) error {
		m.AnalyticsEventsTotal.WithLabelValues(msg.Type).Inc()
		return handle(ctx, msg)
	})
	defer consumer.Close()
	go func() {
		if err := consumer.Run(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analytics.NewHandler(aggregator).Stats)

	var db *postgres.Client
	err = resilience.Retry(ctx, "postgres connect", connectRetry, func(ctx context.Context) error {
		var err error
		db, err = postgres.New(ctx, cfg.Postgres)
		return err
	})
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		snapshots := store.New(db, snapshotRetention)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare analytics schema", "error", err)
			os.Exit(1)
		}
		if latest, err := snapshots.LatestSnapshot(ctx); err != nil {
			slog.Warn("failed to load latest snapshot", "error", err)
		} else if latest != nil {
			slog.Info("previous snapshot found",
				"captured_at", latest.CapturedAt,
				"total_searches", latest.Stats.TotalSearches,
			)
		}
		snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		checker.Register("postgres", health.PingCheck(db.Ping, true))
		mux.HandleFunc("GET /api/v1/analytics/snapshots", store.NewHandler(snapshots).Snapshots)
	}

	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
