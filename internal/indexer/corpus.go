package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// Corpus is the set of documents loaded from one directory together with the
// inverted index over them. A Corpus is immutable once Build returns and is
// safe for concurrent use.
type Corpus struct {
	dir         string
	documents   []*index.Document
	byPath      map[string]*index.Document
	inverted    *index.InvertedIndex
	skipped     []string
	fingerprint string
	buildTime   time.Duration
}

// Build loads every regular file directly inside cfg.Dir, including symbolic
// links to regular files, and indexes it.
// Files are read by at most cfg.Workers goroutines; the index is then merged
// in ascending path order.
func Build(ctx context.Context, cfg config.CorpusConfig) (*Corpus, error) {
	logger := slog.Default().With("component", "indexer")
	start := time.Now()

	paths, err := listDocuments(cfg.Dir)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	docs := make([]*index.Document, len(paths))
	loadErrs := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := index.LoadDocument(path)
			if err != nil {
				if cfg.SkipUnreadable {
					loadErrs[i] = err
					return nil
				}
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &Corpus{
		dir:      cfg.Dir,
		byPath:   make(map[string]*index.Document, len(paths)),
		inverted: index.NewInvertedIndex(),
	}
	for i, doc := range docs {
		if doc == nil {
			logger.Warn("skipping unreadable document",
				"path", paths[i],
				"error", loadErrs[i],
			)
			c.skipped = append(c.skipped, paths[i])
			continue
		}
		c.documents = append(c.documents, doc)
		c.byPath[doc.Path()] = doc
		c.inverted.Add(doc)
	}
	c.fingerprint = fingerprint(c.documents)
	c.buildTime = time.Since(start)

	logger.Info("corpus built",
		"dir", cfg.Dir,
		"documents", len(c.documents),
		"skipped", len(c.skipped),
		"vocabulary", c.inverted.Len(),
		"workers", workers,
		"duration_ms", c.buildTime.Milliseconds(),
	)
	return c, nil
}

func listDocuments(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrDirectoryNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDirectoryUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", apperrors.ErrDirectoryUnreadable, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDirectoryUnreadable, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch mode := entry.Type(); {
		case mode.IsRegular():
		case mode&fs.ModeSymlink != 0:
			// A dangling link stays in the list and fails as a document read.
			if info, err := os.Stat(path); err == nil && !info.Mode().IsRegular() {
				continue
			}
		default:
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func fingerprint(docs []*index.Document) string {
	h := sha256.New()
	for _, doc := range docs {
		h.Write([]byte(doc.Path()))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(doc.TokenCount())))
		h.Write([]byte{0})
		for _, term := range doc.Terms() {
			h.Write([]byte(term))
			h.Write([]byte{0})
			h.Write([]byte(strconv.FormatFloat(doc.TermFrequency(term), 'g', -1, 64)))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Dir returns the directory the corpus was built from.
func (c *Corpus) Dir() string {
	return c.dir
}

// DocumentCount returns the number of indexed documents.
func (c *Corpus) DocumentCount() int {
	return len(c.documents)
}

// Documents returns the indexed documents in ascending path order.
func (c *Corpus) Documents() []*index.Document {
	out := make([]*index.Document, len(c.documents))
	copy(out, c.documents)
	return out
}

// Document returns the document indexed under path.
func (c *Corpus) Document(path string) (*index.Document, bool) {
	doc, ok := c.byPath[path]
	return doc, ok
}

// Skipped returns the paths left out because they could not be loaded.
func (c *Corpus) Skipped() []string {
	out := make([]string, len(c.skipped))
	copy(out, c.skipped)
	return out
}

// VocabularySize returns the number of distinct normalised tokens.
func (c *Corpus) VocabularySize() int {
	return c.inverted.Len()
}

// Vocabulary returns every term with its posting list, sorted by term.
func (c *Corpus) Vocabulary() []index.TermEntry {
	return c.inverted.Snapshot()
}

// Fingerprint identifies the indexed content. Two corpora with the same
// fingerprint answer every query identically.
func (c *Corpus) Fingerprint() string {
	return c.fingerprint
}

// BuildDuration returns how long Build took.
func (c *Corpus) BuildDuration() time.Duration {
	return c.buildTime
}

// DocFreq returns the number of documents containing term after
// normalisation.
func (c *Corpus) DocFreq(term string) int {
	return c.inverted.DocFreq(tokenizer.Normalize(term))
}

// IDF returns ln(DocumentCount / DocFreq) for term, or 0 when no document
// contains it.
func (c *Corpus) IDF(term string) float64 {
	return c.idf(tokenizer.Normalize(term))
}

func (c *Corpus) idf(normalized string) float64 {
	df := c.inverted.DocFreq(normalized)
	if df == 0 {
		return 0
	}
	return math.Log(float64(len(c.documents)) / float64(df))
}

// TFIDF returns the weight of term in doc.
func (c *Corpus) TFIDF(term string, doc *index.Document) float64 {
	return c.IDF(term) * doc.TermFrequency(term)
}

// Search returns the paths of the documents matching query, best first.
// ok is false when no query token occurs in any document, including when
// the query is empty.
func (c *Corpus) Search(query string) ([]string, bool) {
	scored, ok := c.Rank(query, 0)
	if !ok {
		return nil, false
	}
	return ranker.DocIDs(scored), true
}

// Rank scores every document containing at least one query token by the sum
// of the tokens' TF-IDF weights. Repeated query tokens are counted each time
// they occur. A positive limit truncates the ranking.
func (c *Corpus) Rank(query string, limit int) ([]ranker.ScoredDoc, bool) {
	scores := c.scores(tokenizer.Tokenize(query))
	if len(scores) == 0 {
		return nil, false
	}
	return ranker.Rank(scores, limit), true
}

// RankTerms is Rank for an already tokenised query.
func (c *Corpus) RankTerms(terms []string, limit int) ([]ranker.ScoredDoc, bool) {
	scores := c.scores(terms)
	if len(scores) == 0 {
		return nil, false
	}
	return ranker.Rank(scores, limit), true
}

func (c *Corpus) scores(terms []string) map[string]float64 {
	scores := make(map[string]float64)
	for _, term := range terms {
		postings := c.inverted.Postings(term)
		if len(postings) == 0 {
			continue
		}
		idf := c.idf(term)
		for _, doc := range postings {
			scores[doc.Path()] += idf * doc.TermFrequency(term)
		}
	}
	return scores
}
