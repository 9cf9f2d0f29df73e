// Command search builds a TF-IDF index over a directory and prints the
// documents matching a query, best first.
//
// Usage:
//
//	search --dir DIR [--limit N] [--scores] QUERY...
//	search --dir DIR --vocabulary
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

const (
	exitOK      = 0
	exitNoMatch = 1
	exitUsage   = 2
	exitError   = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var (
		cfg        config.CorpusConfig
		limit      int
		scores     bool
		vocabulary bool
		logLevel   string
	)
	flagSet := pflag.NewFlagSet("search", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&cfg.Dir, "dir", "d", "", "directory of documents to index (required)")
	flagSet.IntVarP(&cfg.Workers, "workers", "w", 0, "files read concurrently (default GOMAXPROCS)")
	flagSet.BoolVar(&cfg.SkipUnreadable, "skip-unreadable", false, "leave out documents that cannot be read")
	flagSet.IntVarP(&limit, "limit", "n", 0, "print at most N documents")
	flagSet.BoolVarP(&scores, "scores", "s", false, "print the score next to each document")
	flagSet.BoolVar(&vocabulary, "vocabulary", false, "print every indexed term with its document frequency and IDF")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "usage: search --dir DIR [--limit N] [--scores] QUERY...")
		fmt.Fprintln(stderr, "       search --dir DIR --vocabulary")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	slog.SetDefault(logger.New(stderr, logLevel, "text"))

	query := strings.Join(flagSet.Args(), " ")
	if cfg.Dir == "" || limit < 0 || cfg.Workers < 0 || (query == "" && !vocabulary) {
		flagSet.Usage()
		return exitUsage
	}

	corpus, err := indexer.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "search: %v\n", err)
		if errors.Is(err, apperrors.ErrDirectoryNotFound) || errors.Is(err, apperrors.ErrDirectoryUnreadable) {
			return exitUsage
		}
		return exitError
	}

	if vocabulary {
		for _, entry := range corpus.Vocabulary() {
			fmt.Fprintf(stdout, "%q\t%d\t%.6f\n", entry.Term, len(entry.Postings), corpus.IDF(entry.Term))
		}
		if query == "" {
			return exitOK
		}
	}

	ranked, ok := corpus.Rank(query, limit)
	if !ok {
		fmt.Fprintln(stderr, apperrors.ErrNoMatch)
		return exitNoMatch
	}
	for _, doc := range ranked {
		if scores {
			fmt.Fprintf(stdout, "%.6f\t%s\n", doc.Score, doc.DocID)
		} else {
			fmt.Fprintln(stdout, doc.DocID)
		}
	}
	return exitOK
}
