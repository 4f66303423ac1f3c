// Package observability lets a host program watch taggraph at work.
//
// The library reports fetches, graph builds, renders, cache lookups and
// GraphQL round trips to three hook sets. All of them default to no-ops.
// Hosts install their own implementations once at startup, the CLI uses this
// to trace at debug level:
//
//	observability.SetPipelineHooks(tracer)
//	observability.SetHTTPHooks(tracer)
//
// Library code fetches the current set at the call site:
//
//	observability.Pipeline().OnFetchStart(ctx, "tags")
package observability

import (
	"context"
	"time"
)

// PipelineHooks receives events from the draw pipeline. The fetch purpose is
// "tags" for the primary query and "exclusions" for the exclusion filter.
type PipelineHooks interface {
	OnFetchStart(ctx context.Context, purpose string)
	OnFetchComplete(ctx context.Context, purpose string, count int, duration time.Duration, err error)
	OnBuildComplete(ctx context.Context, nodeCount, edgeCount, excluded int)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is the cache
// namespace, such as "query".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outgoing GraphQL requests. OnError fires for transport
// failures only; non-2xx answers arrive through OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every pipeline event. Embed it to implement only
// some of the methods.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, int)                     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
