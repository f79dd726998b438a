// Package observability lets a host process observe board loading,
// rendering, caching and the viewer server without the libraries depending
// on any metrics or tracing backend.
//
// Hooks default to no-ops. A host registers its own at startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&promPipelineHooks{})
//	    observability.SetServerHooks(&promServerHooks{})
//	    // ...
//	}
//
// Libraries emit events through the accessors:
//
//	observability.Pipeline().OnRenderStart(ctx, "bottom")
//	// ... render ...
//	observability.Pipeline().OnRenderComplete(ctx, "bottom", len(svg), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from board loading and face rendering.
type PipelineHooks interface {
	OnBoardLoadStart(ctx context.Context, folder string)
	OnBoardLoadComplete(ctx context.Context, folder string, layers int, duration time.Duration, err error)

	OnComponentsLoaded(ctx context.Context, path string, count int, err error)

	OnRenderStart(ctx context.Context, face string)
	OnRenderComplete(ctx context.Context, face string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the render cache. keyType is "image" or
// "bounds"; tier is "memory" or "persistent".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, tier, keyType string)
	OnCacheMiss(ctx context.Context, tier, keyType string)
	OnCacheSet(ctx context.Context, tier, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the viewer's HTTP server.
type ServerHooks interface {
	// OnRequest is called after every request with its route pattern.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
	// OnSelect is called when a selection places markers.
	OnSelect(ctx context.Context, value string, placed int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBoardLoadStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnBoardLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnComponentsLoaded(context.Context, string, int, error)                 {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                                  {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error)    {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, string, int) {}

// NoopServerHooks ignores every event.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string, int, time.Duration) {}
func (NoopServerHooks) OnSelect(context.Context, string, int)                         {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	serverHooks   ServerHooks   = NoopServerHooks{}
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers server hooks. nil is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
