// Command loadtest drives GET /api/v1/search with concurrent workers and
// reports throughput and latency.
//
// Queries come from --queries (one per line) or, with --dir, from terms
// sampled out of a locally built index of the same corpus the service
// serves.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Limit       int
	Queries     []string
}

func main() {
	cfg := Config{}
	var queriesFile, dir string
	var sample int
	pflag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "base URL of the search service")
	pflag.IntVarP(&cfg.Concurrency, "concurrency", "c", 10, "number of concurrent workers")
	pflag.DurationVarP(&cfg.Duration, "duration", "t", 30*time.Second, "test duration")
	pflag.IntVarP(&cfg.Limit, "limit", "n", 10, "limit parameter sent with each query")
	pflag.StringVarP(&queriesFile, "queries", "q", "", "file with one query per line")
	pflag.StringVarP(&dir, "dir", "d", "", "corpus directory to sample query terms from")
	pflag.IntVar(&sample, "sample", 200, "number of queries to sample with --dir")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case queriesFile != "":
		cfg.Queries, err = readQueries(queriesFile)
	case dir != "":
		cfg.Queries, err = sampleQueries(ctx, dir, sample)
	default:
		err = errors.New("one of --queries or --dir is required")
	}
	if err == nil && len(cfg.Queries) == 0 {
		err = errors.New("no queries to send")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "loadtest: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("target %s, %d workers, %s, %d queries\n", cfg.BaseURL, cfg.Concurrency, cfg.Duration, len(cfg.Queries))
	start := time.Now()
	stats, err := run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loadtest: %v\n", err)
		os.Exit(1)
	}
	report := stats.Report()
	report.Print(os.Stdout, time.Since(start))
	if report.Total == 0 {
		fmt.Fprintln(os.Stderr, "no requests completed; is the service running?")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (*Stats, error) {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for i := w; gctx.Err() == nil; i++ {
				query := cfg.Queries[i%len(cfg.Queries)]
				target := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", cfg.BaseURL, url.QueryEscape(query), cfg.Limit)
				req, err := http.NewRequestWithContext(gctx, http.MethodGet, target, nil)
				if err != nil {
					return fmt.Errorf("creating request: %w", err)
				}
				start := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(start)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					stats.Record(elapsed, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.Record(elapsed, resp.StatusCode, nil)
			}
			return nil
		})
	}
	return stats, g.Wait()
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening queries: %w", err)
	}
	defer f.Close()
	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			queries = append(queries, line)
		}
	}
	return queries, scanner.Err()
}

// sampleQueries builds one-, two- and three-term queries from the corpus
// vocabulary.
func sampleQueries(ctx context.Context, dir string, n int) ([]string, error) {
	corpus, err := indexer.Build(ctx, config.CorpusConfig{Dir: dir, SkipUnreadable: true})
	if err != nil {
		return nil, err
	}
	vocab := corpus.Vocabulary()
	terms := make([]string, 0, len(vocab))
	for _, entry := range vocab {
		if entry.Term != "" {
			terms = append(terms, entry.Term)
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewPCG(uint64(len(terms)), uint64(n)))
	queries := make([]string, n)
	for i := range queries {
		words := make([]string, 1+i%3)
		for j := range words {
			words[j] = terms[rng.IntN(len(terms))]
		}
		queries[i] = strings.Join(words, " ")
	}
	return queries, nil
}
