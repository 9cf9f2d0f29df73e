// Command searcher builds a TF-IDF index over a directory of text documents
// and serves ranked search over HTTP.
//
// Usage:
//
//	go run ./cmd/searcher [--config configs/development.yaml] [--dir DIR]
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
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

var connectRetry = resilience.RetryConfig{
	MaxAttempts:    4,
	InitialDelay:   500 * time.Millisecond,
	MaxDelay:       5 * time.Second,
	JitterFraction: 0.1,
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file")
	dir := pflag.StringP("dir", "d", "", "corpus directory (overrides corpus.dir)")
	port := pflag.IntP("port", "p", 0, "HTTP port (overrides server.port)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Corpus.Dir = *dir
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "corpus_dir", cfg.Corpus.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpus, err := indexer.Build(ctx, cfg.Corpus)
	if err != nil {
		slog.Error("failed to build corpus", "dir", cfg.Corpus.Dir, "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	m.CorpusDocuments.Set(float64(corpus.DocumentCount()))
	m.CorpusVocabulary.Set(float64(corpus.VocabularySize()))
	m.CorpusSkipped.Set(float64(len(corpus.Skipped())))
	m.CorpusBuildSeconds.Set(corpus.BuildDuration().Seconds())
	if cfg.Metrics.Enabled {
		shutdownMetrics := m.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	exec := executor.New(corpus)
	h := handler.New(exec, corpus, cfg.Search).WithMetrics(m)

	checker := health.NewChecker()
	checker.Register("corpus", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", corpus.DocumentCount(), corpus.VocabularySize()),
		}
	})

	if cfg.Redis.Enabled {
		var redisClient *pkgredis.Client
		err := resilience.Retry(ctx, "redis connect", connectRetry, func(ctx context.Context) error {
			var err error
			redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewCircuitBreaker("redis", resilience.BreakerConfig{
				FailureThreshold: cfg.Redis.BreakerThreshold,
				ResetTimeout:     cfg.Redis.BreakerReset,
				OnStateChange: func(name string, _, to resilience.State) {
					m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				},
			})
			m.CircuitBreakerState.WithLabelValues(breaker.Name()).Set(float64(resilience.StateClosed))
			store := cache.NewGuardedStore(redisClient, breaker, cfg.Redis.OpTimeout)
			h.WithCache(cache.New(store, corpus.Fingerprint(), cfg.Redis.CacheTTL))
			checker.Register("redis", health.PingCheck(redisClient.Ping, true))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()
		collector.TrackCorpus(analytics.CorpusEvent{
			Dir:         corpus.Dir(),
			Documents:   corpus.DocumentCount(),
			Skipped:     len(corpus.Skipped()),
			Vocabulary:  corpus.VocabularySize(),
			Fingerprint: corpus.Fingerprint(),
			BuildMs:     corpus.BuildDuration().Milliseconds(),
			Timestamp:   time.Now().UTC(),
		})
		h.WithTracker(collector)
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.SearchEvents)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/corpus", h.Corpus)
	mux.HandleFunc("GET /api/v1/terms/{term}", h.Term)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		limiter.StartSweeper(ctx, 5*time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
	}
	if len(cfg.Server.AllowOrigins) > 0 {
		chain = middleware.CORS(cfg.Server.AllowOrigins)(chain)
	}
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
