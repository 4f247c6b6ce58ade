// Package observability provides hooks for metrics, tracing, and logging.
//
// Hooks let deployments attach instrumentation without this module depending
// on a particular backend. Register implementations once at startup; the
// pipeline, caches and HTTP server call the registered hooks.
//
//	func main() {
//	    observability.SetSketchHooks(&promSketchHooks{})
//	    // ... run application
//	}
//
// Libraries emit events like this:
//
//	observability.Sketch().OnElementSketched(ctx, ref, segments)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sketch Hooks
// =============================================================================

// SketchHooks receives events from document runs.
type SketchHooks interface {
	// OnRunStart is called after the document is parsed.
	OnRunStart(ctx context.Context, selected int)

	// OnElementSketched is called after a path is rewritten.
	OnElementSketched(ctx context.Context, ref string, segments int)

	// OnElementFailed is called when an element is left untouched because of err.
	OnElementFailed(ctx context.Context, ref string, err error)

	// OnRunComplete is called once per run, successful or not.
	OnRunComplete(ctx context.Context, paths, fonts int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path, requestID string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSketchHooks is a no-op implementation of SketchHooks.
type NoopSketchHooks struct{}

func (NoopSketchHooks) OnRunStart(context.Context, int)                               {}
func (NoopSketchHooks) OnElementSketched(context.Context, string, int)                {}
func (NoopSketchHooks) OnElementFailed(context.Context, string, error)                {}
func (NoopSketchHooks) OnRunComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)              {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sketchHooks SketchHooks = NoopSketchHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetSketchHooks registers custom sketch hooks. Nil is ignored.
func SetSketchHooks(h SketchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sketchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Sketch returns the registered sketch hooks.
func Sketch() SketchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sketchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sketchHooks = NoopSketchHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
