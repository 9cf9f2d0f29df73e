package index

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

const tolerance = 1e-9

func TestNewDocument(t *testing.T) {
	doc := NewDocument("/home/dog.txt", "the cutest dog")

	if got := doc.Path(); got != "/home/dog.txt" {
		t.Errorf("Path() = %q, want %q", got, "/home/dog.txt")
	}
	if diff := cmp.Diff([]string{"cutest", "dog", "the"}, doc.Terms()); diff != "" {
		t.Errorf("Terms() mismatch (-want +got):\n%s", diff)
	}
	for _, term := range []string{"the", "cutest", "dog"} {
		if got := doc.TermFrequency(term); math.Abs(got-1.0/3) > tolerance {
			t.Errorf("TermFrequency(%q) = %v, want 1/3", term, got)
		}
	}
	if got := doc.TermFrequency("cat"); got != 0 {
		t.Errorf("TermFrequency(cat) = %v, want 0", got)
	}
}

func TestTermFrequencyRepeatedWords(t *testing.T) {
	doc := NewDocument("dog.txt", "the cutest cutest dog")
	want := map[string]float64{"the": 0.25, "cutest": 0.5, "dog": 0.25}
	if diff := cmp.Diff(want, doc.Frequencies(), cmpopts.EquateApprox(0, tolerance)); diff != "" {
		t.Errorf("Frequencies() mismatch (-want +got):\n%s", diff)
	}
}

func TestTermFrequencySumsToOne(t *testing.T) {
	texts := []string{
		"a",
		"the quick brown fox jumps over the lazy dog",
		"Dogs, dogs... DOGS! everywhere\nand\tnowhere",
		"!!! ??? ...",
		"one two three one two one",
	}
	for _, text := range texts {
		doc := NewDocument("doc", text)
		var sum float64
		for _, tf := range doc.Frequencies() {
			if tf < 0 || tf > 1 {
				t.Errorf("frequency %v out of [0,1] for %q", tf, text)
			}
			sum += tf
		}
		if math.Abs(sum-1) > tolerance {
			t.Errorf("frequencies of %q sum to %v, want 1", text, sum)
		}
	}
}

func TestTermFrequencyCaseAndPunctuation(t *testing.T) {
	doc := NewDocument("doc", "The cat sat on the mat. THE END!")
	want := doc.TermFrequency("the")
	if want == 0 {
		t.Fatal("TermFrequency(the) = 0, want > 0")
	}
	for _, term := range []string{"The", "the.", "THE!", "(tHe)"} {
		if got := doc.TermFrequency(term); got != want {
			t.Errorf("TermFrequency(%q) = %v, want %v", term, got, want)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	doc := NewDocument("empty.txt", " \n\t")
	if got := doc.TokenCount(); got != 0 {
		t.Errorf("TokenCount() = %d, want 0", got)
	}
	if got := len(doc.Terms()); got != 0 {
		t.Errorf("len(Terms()) = %d, want 0", got)
	}
	if got := doc.TermFrequency(""); got != 0 {
		t.Errorf("TermFrequency(\"\") = %v, want 0", got)
	}
}

func TestPunctuationOnlyTokensCount(t *testing.T) {
	doc := NewDocument("doc", "hello !!!")
	if got := doc.TokenCount(); got != 2 {
		t.Errorf("TokenCount() = %d, want 2", got)
	}
	if got := doc.TermFrequency("hello"); got != 0.5 {
		t.Errorf("TermFrequency(hello) = %v, want 0.5", got)
	}
	if got := doc.TermFrequency("..."); got != 0.5 {
		t.Errorf("TermFrequency(...) = %v, want 0.5", got)
	}
	if diff := cmp.Diff([]string{"", "hello"}, doc.Terms()); diff != "" {
		t.Errorf("Terms() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("very cute cats\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if doc.Path() != path {
		t.Errorf("Path() = %q, want %q", doc.Path(), path)
	}
	if got := doc.TokenCount(); got != 3 {
		t.Errorf("TokenCount() = %d, want 3", got)
	}
}

func TestLoadDocumentErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "binary.dat")
	if err := os.WriteFile(invalid, []byte{'o', 'k', ' ', 0xff, 0xfe}, 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		path   string
		wantOS error
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.txt"), wantOS: os.ErrNotExist},
		{name: "invalid utf-8", path: invalid},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDocument(tt.path)
			if !errors.Is(err, apperrors.ErrDocumentRead) {
				t.Fatalf("LoadDocument() error = %v, want ErrDocumentRead", err)
			}
			if tt.wantOS != nil && !errors.Is(err, tt.wantOS) {
				t.Errorf("LoadDocument() error = %v, want it to wrap %v", err, tt.wantOS)
			}
		})
	}
}
