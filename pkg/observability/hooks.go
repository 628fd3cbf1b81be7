// Package observability provides hooks for metrics and tracing.
//
// Libraries in this module emit events through small hook interfaces instead of
// depending on a metrics backend directly. The server registers Prometheus
// implementations at startup; everything else sees no-op defaults.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCounterHooks(&myCounterHooks{})
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Counters().OnIncrement(ctx, id, count)
//	observability.Render().OnRender(ctx, "png", "default", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Counter Hooks
// =============================================================================

// CounterHooks receives counter store events.
type CounterHooks interface {
	// OnCreate is called after a counter has been committed.
	OnCreate(ctx context.Context, id string)

	// OnIncrement is called after an increment has been committed.
	OnIncrement(ctx context.Context, id string, count int64)

	// OnPersistError is called when a snapshot could not be saved.
	// op names the mutation that was rolled back ("create", "increment", "background").
	OnPersistError(ctx context.Context, op string, err error)
}

// NoopCounterHooks is a no-op implementation of CounterHooks.
type NoopCounterHooks struct{}

func (NoopCounterHooks) OnCreate(context.Context, string)              {}
func (NoopCounterHooks) OnIncrement(context.Context, string, int64)    {}
func (NoopCounterHooks) OnPersistError(context.Context, string, error) {}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives badge rendering and render-cache events.
type RenderHooks interface {
	// OnRender is called after a badge has been produced in the given format.
	OnRender(ctx context.Context, format, layout string, duration time.Duration, err error)

	// OnCacheHit is called when a rasterized badge was served from cache.
	OnCacheHit(ctx context.Context)

	// OnCacheMiss is called when a badge had to be rasterized.
	OnCacheMiss(ctx context.Context)
}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRender(context.Context, string, string, time.Duration, error) {}
func (NoopRenderHooks) OnCacheHit(context.Context)                                     {}
func (NoopRenderHooks) OnCacheMiss(context.Context)                                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	counterHooks CounterHooks = NoopCounterHooks{}
	renderHooks  RenderHooks  = NoopRenderHooks{}
	hooksMu      sync.RWMutex
)

// SetCounterHooks registers custom counter hooks. Nil is ignored.
func SetCounterHooks(h CounterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		counterHooks = h
	}
}

// SetRenderHooks registers custom render hooks. Nil is ignored.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Counters returns the registered counter hooks.
func Counters() CounterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return counterHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	counterHooks = NoopCounterHooks{}
	renderHooks = NoopRenderHooks{}
}
