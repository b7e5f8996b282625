// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about audit runs, cache operations, and registry calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.HTTP().OnRequest(ctx, method, host, path)
package observability

import (
	"context"
	"sync"
	"time"
)

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	mu         sync.RWMutex
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
)

// SetCacheHooks registers cache hooks. Call once at startup. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	cacheHooks = h
}

// SetHTTPHooks registers HTTP hooks. Call once at startup. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	httpHooks = h
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	mu.RLock()
	defer mu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
