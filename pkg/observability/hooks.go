// Package observability provides hooks for metrics around discovery, HTTP and
// cache activity.
//
// Libraries call the registered hooks; main (or the serve command) decides
// what to plug in. The defaults are no-ops, so library code never needs a
// nil check:
//
//	observability.Discovery().OnRegistryStart(ctx, url)
//	// ... fetch and parse ...
//	observability.Discovery().OnRegistryComplete(ctx, url, len(records), time.Since(start), err)
//
// [PrometheusHooks] implements all three interfaces.
package observability

import (
	"context"
	"sync"
	"time"
)

// DiscoveryHooks receives events from registry discovery and integration dispatch.
type DiscoveryHooks interface {
	OnRegistryStart(ctx context.Context, registry string)
	OnRegistryComplete(ctx context.Context, registry string, records int, duration time.Duration, err error)
	OnIntegrate(ctx context.Context, api, specType string, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, namespace string)
	OnCacheMiss(ctx context.Context, namespace string)
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response received).
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopDiscoveryHooks struct{}

func (NoopDiscoveryHooks) OnRegistryStart(context.Context, string) {}
func (NoopDiscoveryHooks) OnRegistryComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopDiscoveryHooks) OnIntegrate(context.Context, string, string, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	discoveryHooks DiscoveryHooks = NoopDiscoveryHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetDiscoveryHooks registers discovery hooks. Nil is ignored.
func SetDiscoveryHooks(h DiscoveryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		discoveryHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Discovery returns the registered discovery hooks.
func Discovery() DiscoveryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return discoveryHooks
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
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	discoveryHooks = NoopDiscoveryHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
