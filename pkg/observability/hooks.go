// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about layout generation, mask synthesis, and
// cache operations.
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This avoids import cycles (hooks are registered by main, not by
// libraries) and keeps the core library free of observability frameworks.
//
// # Usage
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, bookID, page)
//	// ... generate layout ...
//	observability.Layout().OnLayoutComplete(ctx, bookID, page, collided, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// LayoutHooks receives events from layout and spread generation.
type LayoutHooks interface {
	// OnLayoutStart records the start of one page's layout generation.
	OnLayoutStart(ctx context.Context, bookID string, pageNumber int)

	// OnLayoutComplete records completion, including whether the advisory
	// collision check flagged the result.
	OnLayoutComplete(ctx context.Context, bookID string, pageNumber int, collided bool, duration time.Duration)

	// OnSpreadsBuilt records a finished spread build.
	OnSpreadsBuilt(ctx context.Context, bookID string, spreadCount int, duration time.Duration)
}

// MaskHooks receives events from mask synthesis.
type MaskHooks interface {
	// OnMaskGenerated records one generated mask.
	OnMaskGenerated(ctx context.Context, kind string, width, height int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                            {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, bool, time.Duration)    {}
func (NoopLayoutHooks) OnSpreadsBuilt(context.Context, string, int, time.Duration)            {}

// NoopMaskHooks is a no-op implementation of MaskHooks.
type NoopMaskHooks struct{}

func (NoopMaskHooks) OnMaskGenerated(context.Context, string, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	maskHooks   MaskHooks   = NoopMaskHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetMaskHooks registers custom mask hooks.
func SetMaskHooks(h MaskHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		maskHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Mask returns the registered mask hooks.
func Mask() MaskHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return maskHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	maskHooks = NoopMaskHooks{}
	cacheHooks = NoopCacheHooks{}
}
