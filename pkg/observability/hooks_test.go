package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopHTTPHooks

	mu      sync.Mutex
	fetches []string
	hits    int
}

func (c *countingHooks) OnFetchStart(_ context.Context, purpose string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches = append(c.fetches, purpose)
}

func (c *countingHooks) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", HTTP())
	}

	Pipeline().OnFetchComplete(ctx, "tags", 3, time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)
	Cache().OnCacheSet(ctx, "query", 512)
	HTTP().OnError(ctx, "POST", "gql.local", "/graphql", context.Canceled)
}

func TestInstallAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &countingHooks{}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetPipelineHooks(nil)

	ctx := context.Background()
	Pipeline().OnFetchStart(ctx, "tags")
	Pipeline().OnFetchStart(ctx, "exclusions")
	Cache().OnCacheHit(ctx, "query")

	if len(h.fetches) != 2 || h.fetches[1] != "exclusions" {
		t.Errorf("fetches = %v", h.fetches)
	}
	if h.hits != 1 {
		t.Errorf("hits = %d, want 1", h.hits)
	}
	if HTTP() != HTTPHooks(h) {
		t.Error("HTTP hooks not installed")
	}

	Reset()
	Pipeline().OnFetchStart(ctx, "tags")
	if len(h.fetches) != 2 {
		t.Error("hooks still called after Reset")
	}
}

func TestConcurrentInstall(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	p, c := &countingHooks{}, &countingHooks{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); SetPipelineHooks(p) }()
	go func() { defer wg.Done(); SetCacheHooks(c) }()
	wg.Wait()

	if Pipeline() != PipelineHooks(p) || Cache() != CacheHooks(c) {
		t.Error("one of the concurrent installs was lost")
	}
}
