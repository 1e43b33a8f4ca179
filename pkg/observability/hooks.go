// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about dataset loading, layout runs, zoom requests, cache
// operations and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] implements every interface and is what `devmap serve`
// registers.
//
// # Usage
//
// Register hooks at application startup:
//
//	hooks, err := observability.NewPrometheusHooks(prometheus.NewRegistry())
//	if err != nil { ... }
//	observability.SetAll(hooks)
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, runID, len(points))
//	// ... tick until settled ...
//	observability.Layout().OnLayoutSettled(ctx, runID, ticks, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the dataset pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, dataset string)
	OnLoadComplete(ctx context.Context, dataset string, rows int, duration time.Duration, err error)

	// OnRankComplete records a ranking pass over one dataset.
	OnRankComplete(ctx context.Context, dataset string, rows int, duration time.Duration)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from collision layout runs.
type LayoutHooks interface {
	// OnLayoutStart records the start of a run over the given number of points.
	OnLayoutStart(ctx context.Context, runID string, points int)

	// OnLayoutTick records one simulation step.
	OnLayoutTick(ctx context.Context, runID string, alpha float64)

	// OnLayoutSettled records a run that cooled below the minimum alpha.
	OnLayoutSettled(ctx context.Context, runID string, ticks int, duration time.Duration)

	// OnLayoutSuperseded records a run cancelled by a newer request.
	OnLayoutSuperseded(ctx context.Context, runID string, ticks int)
}

// =============================================================================
// Zoom Hooks
// =============================================================================

// ZoomHooks receives events from zoom controllers.
type ZoomHooks interface {
	// OnZoom records a zoom request and what it resolved to
	// (zoomed, toggled, unknown, invalid, cleared, resized).
	OnZoom(ctx context.Context, outcome string)
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

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnResponse records a served request. route is the matched pattern,
	// not the raw path.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                              {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRankComplete(context.Context, string, int, time.Duration)        {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                  {}
func (NoopLayoutHooks) OnLayoutTick(context.Context, string, float64)               {}
func (NoopLayoutHooks) OnLayoutSettled(context.Context, string, int, time.Duration) {}
func (NoopLayoutHooks) OnLayoutSuperseded(context.Context, string, int)             {}

// NoopZoomHooks is a no-op implementation of ZoomHooks.
type NoopZoomHooks struct{}

func (NoopZoomHooks) OnZoom(context.Context, string) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	layoutHooks   LayoutHooks   = NoopLayoutHooks{}
	zoomHooks     ZoomHooks     = NoopZoomHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetZoomHooks registers custom zoom hooks.
func SetZoomHooks(h ZoomHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		zoomHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// AllHooks is implemented by backends that handle every event category.
type AllHooks interface {
	PipelineHooks
	LayoutHooks
	ZoomHooks
	CacheHooks
	HTTPHooks
}

// SetAll registers h for every event category.
func SetAll(h AllHooks) {
	if h == nil {
		return
	}
	SetPipelineHooks(h)
	SetLayoutHooks(h)
	SetZoomHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Zoom returns the registered zoom hooks.
func Zoom() ZoomHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return zoomHooks
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
	pipelineHooks = NoopPipelineHooks{}
	layoutHooks = NoopLayoutHooks{}
	zoomHooks = NoopZoomHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
