package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
)

func newExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"doc1.txt": "Dogs are the cutest dog",
		"doc2.txt": "very cute cats",
		"doc3.txt": "dogs dogs everywhere",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	corpus, err := indexer.Build(context.Background(), config.CorpusConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	return New(corpus), dir
}

func TestExecute(t *testing.T) {
	e, dir := newExecutor(t)
	result, err := e.Execute(context.Background(), parser.Parse("dogs cats unicorn"), 2)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Matched {
		t.Fatal("Matched = false, want true")
	}
	if result.TotalHits != 3 {
		t.Errorf("TotalHits = %d, want 3", result.TotalHits)
	}
	gotIDs := make([]string, len(result.Results))
	for i, r := range result.Results {
		gotIDs[i] = r.DocID
	}
	wantIDs := []string{filepath.Join(dir, "doc2.txt"), filepath.Join(dir, "doc3.txt")}
	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Errorf("result ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"dogs": 2, "cats": 1}, result.TermStats); diff != "" {
		t.Errorf("TermStats mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteNoMatch(t *testing.T) {
	e, _ := newExecutor(t)
	for _, q := range []string{"", "happy"} {
		result, err := e.Execute(context.Background(), parser.Parse(q), 10)
		if err != nil {
			t.Fatalf("Execute(%q) error = %v", q, err)
		}
		if result.Matched || result.TotalHits != 0 || len(result.Results) != 0 {
			t.Errorf("Execute(%q) = %+v, want no match", q, result)
		}
	}
}

func TestExecuteCanceled(t *testing.T) {
	e, _ := newExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Execute(ctx, parser.Parse("dogs"), 10); err == nil {
		t.Error("Execute() error = nil, want context error")
	}
}
