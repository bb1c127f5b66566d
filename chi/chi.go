// Package chi provides provi integration for net/http routers such as Chi.
//
// The middleware attaches a container to each request: either a fresh
// instance per request (request-scoped Singleton memoization) or one shared
// instance whose Singleton caches are cleared after every request. Handlers
// retrieve the container with FromContext, or use Handle to receive it as an
// argument.
//
// Example usage:
//
//	r := chi.NewRouter()
//	r.Use(provichi.ContainerMiddleware(func(*http.Request) *AppContainer {
//	    return NewAppContainer()
//	}))
//
//	r.Get("/users", provichi.Handle(func(c *AppContainer, w http.ResponseWriter, r *http.Request) {
//	    db, err := c.DB.Resolve()
//	    ...
//	}))
package chi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/provilib/provi"
)

type containerKey struct{}

// Config holds the configuration for the handler wrappers.
type Config struct {
	// ErrorHandler is called when a handler runs without a container in the
	// request context. If nil, a default handler returning 500 Internal
	// Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request)

	// ResetErrorHandler is called when the per-request singleton reset of a
	// shared container fails. If nil, errors are logged using slog.
	ResetErrorHandler func(error)
}

// Option configures the wrappers.
type Option func(*Config)

// WithErrorHandler sets the handler invoked when no container is attached to
// the request.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithResetErrorHandler sets the handler for singleton-reset failures in
// SharedContainerMiddleware.
func WithResetErrorHandler(h func(error)) Option {
	return func(c *Config) {
		c.ResetErrorHandler = h
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ResetErrorHandler: func(err error) {
			slog.Error("failed to reset container singletons", "error", err)
		},
	}
}

func applyOptions(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// ContainerMiddleware builds a fresh container per request with build and
// attaches it to the request context. Each request gets its own Singleton
// memoization, the per-request analog of a scope.
func ContainerMiddleware[C any](build func(*http.Request) *C) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), containerKey{}, build(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SharedContainerMiddleware attaches one shared container to every request
// and clears its Singleton caches after each request completes, so no request
// observes another request's memoized values.
func SharedContainerMiddleware[C any](container *C, opts ...Option) func(http.Handler) http.Handler {
	cfg := applyOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), containerKey{}, container)
			defer func() {
				if err := provi.ResetSingletonInstances(container); err != nil {
					cfg.ResetErrorHandler(err)
				}
			}()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the container attached to the request context.
func FromContext[C any](ctx context.Context) (*C, bool) {
	c, ok := ctx.Value(containerKey{}).(*C)
	return c, ok
}

// Handle adapts a container-aware handler into an http.HandlerFunc. A request
// without an attached container is answered by the configured error handler.
func Handle[C any](fn func(*C, http.ResponseWriter, *http.Request), opts ...Option) http.HandlerFunc {
	cfg := applyOptions(opts)
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := FromContext[C](r.Context())
		if !ok {
			cfg.ErrorHandler(w, r)
			return
		}
		fn(c, w, r)
	}
}
