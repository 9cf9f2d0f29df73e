package index

import (
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// Document is the per-document index: the identifier it was built under and
// the fraction of its tokens taken by each distinct normalised token. It is
// never modified after construction.
type Document struct {
	path        string
	tokenCount  int
	frequencies map[string]float64
}

// NewDocument builds a Document from raw text. Every whitespace-separated
// raw token counts towards the total, including tokens that normalise to the
// empty string.
func NewDocument(path string, text string) *Document {
	tokens := tokenizer.Tokenize(text)
	counts := make(map[string]int)
	for _, token := range tokens {
		counts[token]++
	}
	frequencies := make(map[string]float64, len(counts))
	if n := len(tokens); n > 0 {
		for term, count := range counts {
			frequencies[term] = float64(count) / float64(n)
		}
	}
	return &Document{
		path:        path,
		tokenCount:  len(tokens),
		frequencies: frequencies,
	}
}

// LoadDocument reads the file at path and builds its Document. Read failures
// and content that is not valid UTF-8 are reported as ErrDocumentRead.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDocumentRead, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", apperrors.ErrDocumentRead, path)
	}
	return NewDocument(path, string(data)), nil
}

// Path returns the identifier the document was built under.
func (d *Document) Path() string {
	return d.path
}

// TokenCount returns the number of raw tokens in the document.
func (d *Document) TokenCount() int {
	return d.tokenCount
}

// TermFrequency normalises term and returns its share of the document's
// tokens, or 0 when the document does not contain it.
func (d *Document) TermFrequency(term string) float64 {
	return d.frequencies[tokenizer.Normalize(term)]
}

// Terms returns the distinct normalised tokens of the document in ascending
// order.
func (d *Document) Terms() []string {
	terms := make([]string, 0, len(d.frequencies))
	for term := range d.frequencies {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Frequencies returns a copy of the term-frequency table.
func (d *Document) Frequencies() map[string]float64 {
	out := make(map[string]float64, len(d.frequencies))
	for term, tf := range d.frequencies {
		out[term] = tf
	}
	return out
}
