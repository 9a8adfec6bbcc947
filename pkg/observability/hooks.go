// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about stash transitions, session reactions, and HTTP
// requests served by the shell.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the engine packages
// import no metrics backend. internal/metrics provides the Prometheus
// implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStashHooks(metrics.NewStashHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	pushed, err := s.downsize(...)
//	observability.Stash().OnDownsize(ctx, "merge", width, pushed, fits, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Stash Hooks
// =============================================================================

// StashHooks receives events from the snapshot stash.
type StashHooks interface {
	// OnDownsize records one downsize reaction and how many snapshots it pushed.
	OnDownsize(ctx context.Context, direction string, viewportWidth, pushed int, fits bool, duration time.Duration)

	// OnUpgrade records a migrate-and-pop step.
	OnUpgrade(ctx context.Context, viewportWidth, actions int, duration time.Duration, err error)

	// OnTemplateLoad records a template (re)load at a panel budget.
	OnTemplateLoad(ctx context.Context, maxPanels, groups int, err error)

	// OnDepth records the stash depth after every change.
	OnDepth(ctx context.Context, depth int)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from the breakpoint reaction loop.
type SessionHooks interface {
	// OnResize records a viewport change reported by the shell.
	OnResize(ctx context.Context, width, height int)

	// OnRecompute records a re-analysis of the current layout.
	OnRecompute(ctx context.Context, trigger string, duration time.Duration, err error)

	// OnOverflow records the overflow flags after a reaction.
	OnOverflow(ctx context.Context, width, height bool)

	// OnEditSuperseded records a pending debounced recompute that a newer
	// edit replaced.
	OnEditSuperseded(ctx context.Context)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP shell.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnError records a handler error.
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStashHooks is a no-op implementation of StashHooks.
type NoopStashHooks struct{}

func (NoopStashHooks) OnDownsize(context.Context, string, int, int, bool, time.Duration) {}
func (NoopStashHooks) OnUpgrade(context.Context, int, int, time.Duration, error)         {}
func (NoopStashHooks) OnTemplateLoad(context.Context, int, int, error)                   {}
func (NoopStashHooks) OnDepth(context.Context, int)                                      {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnResize(context.Context, int, int)                        {}
func (NoopSessionHooks) OnRecompute(context.Context, string, time.Duration, error) {}
func (NoopSessionHooks) OnOverflow(context.Context, bool, bool)                    {}
func (NoopSessionHooks) OnEditSuperseded(context.Context)                          {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	stashHooks   StashHooks   = NoopStashHooks{}
	sessionHooks SessionHooks = NoopSessionHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetStashHooks registers custom stash hooks.
// This should be called once at application startup.
func SetStashHooks(h StashHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		stashHooks = h
	}
}

// SetSessionHooks registers custom session hooks.
// This should be called once at application startup.
func SetSessionHooks(h SessionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sessionHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Stash returns the registered stash hooks.
func Stash() StashHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return stashHooks
}

// Session returns the registered session hooks.
func Session() SessionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sessionHooks
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
	stashHooks = NoopStashHooks{}
	sessionHooks = NoopSessionHooks{}
	httpHooks = NoopHTTPHooks{}
}
