package loader

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RequestScope holds the loader and middleware instances realized for one
// request context.
type RequestScope struct {
	Loaders    map[string]interface{}
	Middleware map[string]interface{}
}

// ContextFunc realizes every registered context-bound factory against one
// request context. Each call builds fresh instances; nothing is memoized or
// shared between calls, so per-request caches cannot leak across requests.
type ContextFunc func(ctx context.Context) (*RequestScope, error)

// BindContextFns captures the factory maps and defers realization until a
// request context exists. Factories within one realization may run
// concurrently; the realized scope is only returned once all of them have
// completed. The first factory failure fails the whole realization as a
// *FactoryError naming the factory.
func BindContextFns(loaders, middleware map[string]ContextFactory) ContextFunc {
	return func(ctx context.Context) (*RequestScope, error) {
		scope := &RequestScope{
			Loaders:    make(map[string]interface{}, len(loaders)),
			Middleware: make(map[string]interface{}, len(middleware)),
		}

		// factories receive the caller's context untouched, not a derived
		// cancellable one
		var eg errgroup.Group
		var mu sync.Mutex
		realize := func(kind, name string, factory ContextFactory, dst map[string]interface{}) {
			eg.Go(func() error {
				v, err := factory(ctx)
				if err != nil {
					return &FactoryError{Kind: kind, Name: name, Err: err}
				}
				mu.Lock()
				dst[name] = v
				mu.Unlock()
				return nil
			})
		}

		for name, factory := range loaders {
			realize("loader", name, factory, scope.Loaders)
		}
		for name, factory := range middleware {
			realize("middleware", name, factory, scope.Middleware)
		}

		err := eg.Wait()
		if err != nil {
			return nil, err
		}
		return scope, nil
	}
}

type scopeContextKey struct{}

// NewContext returns a context carrying the realized scope, for callers that
// merge per-request instances into the request context before serving it.
func NewContext(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext retrieves the scope stored by NewContext.
func ScopeFromContext(ctx context.Context) (*RequestScope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(*RequestScope)
	return scope, ok
}
