package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

func TestSpanTree(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-1")
	ctx, root := Start(ctx, "search")
	_, parse := Start(ctx, "parse")
	parse.End()
	execCtx, exec := Start(ctx, "execute")
	_, rank := Start(execCtx, "rank")
	rank.End()
	exec.End()
	root.End()

	if FromContext(execCtx) != exec {
		t.Error("FromContext() did not return the innermost span")
	}
	for _, s := range []*Span{root, parse, exec, rank} {
		if s.TraceID != "req-1" {
			t.Errorf("span %s TraceID = %q, want req-1", s.Name, s.TraceID)
		}
	}
	var names []string
	for _, c := range root.Children() {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"parse", "execute"}, names); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestSpanLog(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, root := Start(context.Background(), "search")
	root.SetAttr("cache_hit", true)
	_, child := Start(ctx, "execute")
	child.End()
	root.End()
	root.Log(ctx, l)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "span=search") || !strings.Contains(lines[0], "cache_hit=true") {
		t.Errorf("root line = %s", lines[0])
	}
	if !strings.Contains(lines[1], "span=execute") || !strings.Contains(lines[1], "depth=1") {
		t.Errorf("child line = %s", lines[1])
	}
}

func TestSpanLogBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	_, root := Start(context.Background(), "search")
	root.End()
	root.Log(context.Background(), l)
	if buf.Len() != 0 {
		t.Errorf("span logged above debug level: %s", buf.String())
	}
}
