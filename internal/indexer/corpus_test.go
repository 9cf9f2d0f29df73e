package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

const epsilon = 1e-9

func writeCorpus(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func buildCorpus(t testing.TB, dir string) *Corpus {
	t.Helper()
	c, err := Build(context.Background(), config.CorpusConfig{Dir: dir})
	if err != nil {
		t.Fatalf("Build(%s) error = %v", dir, err)
	}
	return c
}

func animalsCorpus(t testing.TB) (*Corpus, string) {
	t.Helper()
	dir := writeCorpus(t, map[string]string{
		"doc1.txt": "Dogs are the cutest dog",
		"doc2.txt": "very cute cats",
		"doc3.txt": "dogs dogs everywhere",
	})
	return buildCorpus(t, dir), dir
}

func TestBuildAnimals(t *testing.T) {
	c, dir := animalsCorpus(t)
	doc1 := filepath.Join(dir, "doc1.txt")
	doc2 := filepath.Join(dir, "doc2.txt")
	doc3 := filepath.Join(dir, "doc3.txt")

	if got := c.DocumentCount(); got != 3 {
		t.Fatalf("DocumentCount() = %d, want 3", got)
	}
	if got, want := c.IDF("dogs"), math.Log(3.0/2.0); math.Abs(got-want) > epsilon {
		t.Errorf("IDF(dogs) = %v, want %v", got, want)
	}

	got, ok := c.Search("dogs")
	if !ok {
		t.Fatal("Search(dogs) reported no match")
	}
	if diff := cmp.Diff([]string{doc3, doc1}, got); diff != "" {
		t.Errorf("Search(dogs) mismatch (-want +got):\n%s", diff)
	}

	got, ok = c.Search("Cats very cute")
	if !ok {
		t.Fatal("Search(Cats very cute) reported no match")
	}
	if diff := cmp.Diff([]string{doc2}, got); diff != "" {
		t.Errorf("Search(Cats very cute) mismatch (-want +got):\n%s", diff)
	}

	for _, q := range []string{"happy", "", "   "} {
		if got, ok := c.Search(q); ok || got != nil {
			t.Errorf("Search(%q) = %v, %v; want no match", q, got, ok)
		}
	}
}

func TestTFIDF(t *testing.T) {
	c, dir := animalsCorpus(t)
	doc1, ok := c.Document(filepath.Join(dir, "doc1.txt"))
	if !ok {
		t.Fatal("doc1.txt not indexed")
	}
	want := math.Log(3.0/2.0) * 0.2
	if got := c.TFIDF("DOGS!", doc1); math.Abs(got-want) > epsilon {
		t.Errorf("TFIDF(DOGS!, doc1) = %v, want %v", got, want)
	}
	if got := c.TFIDF("cats", doc1); got != 0 {
		t.Errorf("TFIDF(cats, doc1) = %v, want 0", got)
	}
}

func TestIDFBounds(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "the quick fox",
		"b.txt": "the lazy dog",
		"c.txt": "the end",
	})
	c := buildCorpus(t, dir)
	maxIDF := math.Log(float64(c.DocumentCount()))
	for _, entry := range c.Vocabulary() {
		idf := c.IDF(entry.Term)
		if idf < 0 || idf > maxIDF+epsilon {
			t.Errorf("IDF(%q) = %v, want within [0, %v]", entry.Term, idf, maxIDF)
		}
	}
	if got := c.IDF("the"); got != 0 {
		t.Errorf("IDF(the) = %v, want 0 for a term in every document", got)
	}
	if got := c.IDF("unicorn"); got != 0 {
		t.Errorf("IDF(unicorn) = %v, want 0 for an unknown term", got)
	}
}

func TestUnknownTermNeutral(t *testing.T) {
	c, _ := animalsCorpus(t)
	want, _ := c.Rank("dogs cute", 0)
	got, ok := c.Rank("dogs unicorn cute zebra", 0)
	if !ok {
		t.Fatal("Rank() reported no match")
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, epsilon)); diff != "" {
		t.Errorf("unknown terms changed ranking (-want +got):\n%s", diff)
	}
}

func TestRepeatedQueryTerms(t *testing.T) {
	c, _ := animalsCorpus(t)
	once, _ := c.Rank("dogs", 0)
	twice, _ := c.Rank("dogs Dogs", 0)
	if len(once) != len(twice) {
		t.Fatalf("len = %d and %d, want equal", len(once), len(twice))
	}
	for i := range once {
		if twice[i].DocID != once[i].DocID {
			t.Errorf("position %d: %s vs %s", i, twice[i].DocID, once[i].DocID)
		}
		if math.Abs(twice[i].Score-2*once[i].Score) > epsilon {
			t.Errorf("%s: score %v, want %v", twice[i].DocID, twice[i].Score, 2*once[i].Score)
		}
	}
}

func TestUbiquitousTermStillMatches(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "shared word",
		"b.txt": "shared thing",
	})
	c := buildCorpus(t, dir)
	got, ok := c.Rank("shared", 0)
	if !ok {
		t.Fatal("Rank(shared) reported no match")
	}
	want := []ranker.ScoredDoc{
		{DocID: filepath.Join(dir, "a.txt"), Score: 0},
		{DocID: filepath.Join(dir, "b.txt"), Score: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank(shared) mismatch (-want +got):\n%s", diff)
	}
}

func TestTieBreakByPath(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"zeta.txt":  "apple pie",
		"alpha.txt": "apple pie",
		"mid.txt":   "banana split",
	})
	c := buildCorpus(t, dir)
	got, ok := c.Search("apple")
	if !ok {
		t.Fatal("Search(apple) reported no match")
	}
	want := []string{filepath.Join(dir, "alpha.txt"), filepath.Join(dir, "zeta.txt")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search(apple) mismatch (-want +got):\n%s", diff)
	}
}

func TestRankLimit(t *testing.T) {
	c, dir := animalsCorpus(t)
	got, ok := c.Rank("dogs cats", 1)
	if !ok {
		t.Fatal("Rank() reported no match")
	}
	if len(got) != 1 || got[0].DocID != filepath.Join(dir, "doc2.txt") {
		t.Errorf("Rank(dogs cats, 1) = %v, want doc2 only", got)
	}
}

func TestPunctuationQueryMatchesEmptyToken(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "hello !!!",
		"b.txt": "world",
	})
	c := buildCorpus(t, dir)
	got, ok := c.Search("?")
	if !ok {
		t.Fatal("Search(?) reported no match")
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "a.txt")}, got); diff != "" {
		t.Errorf("Search(?) mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchDeterministic(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 40; i++ {
		files[fmt.Sprintf("doc%02d.txt", i)] = fmt.Sprintf("common term%d shared words %d", i%5, i%3)
	}
	dir := writeCorpus(t, files)

	sequential, err := Build(context.Background(), config.CorpusConfig{Dir: dir, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := Build(context.Background(), config.CorpusConfig{Dir: dir, Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	if sequential.Fingerprint() != parallel.Fingerprint() {
		t.Errorf("Fingerprint() differs between worker counts")
	}
	for _, q := range []string{"term1", "shared term3 0", "words 2 common"} {
		want, _ := sequential.Rank(q, 0)
		for run := 0; run < 5; run++ {
			got, _ := parallel.Rank(q, 0)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("Rank(%q) run %d mismatch (-want +got):\n%s", q, run, diff)
			}
		}
	}
}

func TestBuildSkipsSubdirectories(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.txt": "alpha"})
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "b.txt"), []byte("beta"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := buildCorpus(t, dir)
	if got := c.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount() = %d, want 1", got)
	}
	if _, ok := c.Search("beta"); ok {
		t.Error("Search(beta) matched a document from a subdirectory")
	}
}

func TestBuildFollowsSymlinks(t *testing.T) {
	target := writeCorpus(t, map[string]string{"linked.txt": "linked dogs"})
	dir := writeCorpus(t, map[string]string{"plain.txt": "plain cats"})
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(filepath.Join(target, "linked.txt"), link); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "linkdir")); err != nil {
		t.Fatal(err)
	}

	c := buildCorpus(t, dir)
	if got := c.DocumentCount(); got != 2 {
		t.Fatalf("DocumentCount() = %d, want 2", got)
	}
	got, ok := c.Search("dogs")
	if !ok {
		t.Fatal("Search(dogs) found no match")
	}
	if diff := cmp.Diff([]string{link}, got); diff != "" {
		t.Errorf("Search(dogs) mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDanglingSymlink(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"plain.txt": "plain cats"})
	dangling := filepath.Join(dir, "gone.txt")
	if err := os.Symlink(filepath.Join(dir, "missing.txt"), dangling); err != nil {
		t.Fatal(err)
	}

	_, err := Build(context.Background(), config.CorpusConfig{Dir: dir})
	if !errors.Is(err, apperrors.ErrDocumentRead) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Build() error = %v, want ErrDocumentRead wrapping fs.ErrNotExist", err)
	}

	c, err := Build(context.Background(), config.CorpusConfig{Dir: dir, SkipUnreadable: true})
	if err != nil {
		t.Fatalf("Build() with SkipUnreadable error = %v", err)
	}
	if c.DocumentCount() != 1 {
		t.Errorf("DocumentCount() = %d, want 1", c.DocumentCount())
	}
	if diff := cmp.Diff([]string{dangling}, c.Skipped()); diff != "" {
		t.Errorf("Skipped() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyDirectory(t *testing.T) {
	c := buildCorpus(t, t.TempDir())
	if c.DocumentCount() != 0 || c.VocabularySize() != 0 {
		t.Errorf("empty corpus has %d documents, %d terms", c.DocumentCount(), c.VocabularySize())
	}
	if _, ok := c.Search("anything"); ok {
		t.Error("Search() on empty corpus reported a match")
	}
}

func TestBuildErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := Build(context.Background(), config.CorpusConfig{Dir: missing})
	if !errors.Is(err, apperrors.ErrDirectoryNotFound) {
		t.Errorf("Build(missing) error = %v, want ErrDirectoryNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Build(missing) error = %v, want wrapped fs.ErrNotExist", err)
	}

	file := filepath.Join(writeCorpus(t, map[string]string{"a.txt": "x"}), "a.txt")
	if _, err := Build(context.Background(), config.CorpusConfig{Dir: file}); !errors.Is(err, apperrors.ErrDirectoryUnreadable) {
		t.Errorf("Build(file) error = %v, want ErrDirectoryUnreadable", err)
	}
}

func TestBuildUnreadableDocument(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"good.txt": "fine words",
		"bad.txt":  "\xff\xfe broken",
	})

	_, err := Build(context.Background(), config.CorpusConfig{Dir: dir})
	if !errors.Is(err, apperrors.ErrDocumentRead) {
		t.Fatalf("Build() error = %v, want ErrDocumentRead", err)
	}

	c, err := Build(context.Background(), config.CorpusConfig{Dir: dir, SkipUnreadable: true})
	if err != nil {
		t.Fatalf("Build(SkipUnreadable) error = %v", err)
	}
	if got := c.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount() = %d, want 1", got)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "bad.txt")}, c.Skipped()); diff != "" {
		t.Errorf("Skipped() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCanceled(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.txt": "alpha"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, config.CorpusConfig{Dir: dir}); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func BenchmarkBuild(b *testing.B) {
	files := make(map[string]string)
	for i := 0; i < 200; i++ {
		files[fmt.Sprintf("doc%03d.txt", i)] = fmt.Sprintf("document %d talks about topic%d and topic%d at length", i, i%17, i%29)
	}
	dir := writeCorpus(b, files)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(context.Background(), config.CorpusConfig{Dir: dir}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	files := make(map[string]string)
	for i := 0; i < 200; i++ {
		files[fmt.Sprintf("doc%03d.txt", i)] = fmt.Sprintf("document %d talks about topic%d and topic%d at length", i, i%17, i%29)
	}
	c := buildCorpus(b, writeCorpus(b, files))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Search("topic3 document length")
	}
}
