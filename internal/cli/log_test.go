package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoggerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden detail")
	logger.Info("drew graph", "tags", 3)

	out := buf.String()
	if strings.Contains(out, "hidden detail") {
		t.Errorf("debug line printed at info level: %q", out)
	}
	if !strings.Contains(out, "drew graph") || !strings.Contains(out, "tags=3") {
		t.Errorf("info line missing or without fields: %q", out)
	}

	buf.Reset()
	logger.SetLevel(log.DebugLevel)
	logger.Debug("hidden detail")
	if !strings.Contains(buf.String(), "hidden detail") {
		t.Error("debug line dropped at debug level")
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.start = p.start.Add(-1500 * time.Millisecond)
	p.done("Rendered 2 formats")

	out := buf.String()
	if !strings.Contains(out, "Rendered 2 formats (1.5") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.DebugLevel))
	ctx := context.Background()

	h.OnFetchStart(ctx, "tags")
	h.OnFetchComplete(ctx, "tags", 3, time.Millisecond, nil)
	h.OnFetchComplete(ctx, "exclusions", 0, time.Millisecond, context.Canceled)
	h.OnBuildComplete(ctx, 3, 2, 1)
	h.OnCacheHit(ctx, "gql")
	h.OnRequest(ctx, "POST", "localhost:9999", "/graphql")
	h.OnResponse(ctx, "POST", "localhost:9999", "/graphql", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"fetch start", "fetch done", "fetch failed", "build done", "cache hit", "http request", "http response", "trace"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.InfoLevel))
	h.OnFetchStart(context.Background(), "tags")
	if buf.Len() != 0 {
		t.Errorf("hooks should log at debug level only, got %q", buf.String())
	}
}
