package origin

import (
	"context"
	"net/http"
)

type contextKey struct{}

// FromContext returns the ResolvedOrigin stored by Middleware, if any.
func FromContext(ctx context.Context) (ResolvedOrigin, bool) {
	resolved, ok := ctx.Value(contextKey{}).(ResolvedOrigin)
	return resolved, ok
}

// ContextWithOrigin returns a context carrying resolved, as Middleware
// does. Useful in tests and non-HTTP call paths.
func ContextWithOrigin(ctx context.Context, resolved ResolvedOrigin) context.Context {
	return context.WithValue(ctx, contextKey{}, resolved)
}

// ErrorHandler decides the HTTP response when resolution fails inside
// Middleware.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

// Middleware resolves the client origin for each request and stores it in
// the request context for retrieval with FromContext.
//
// On resolution failure the error handler is invoked and next is not
// called; pass nil to get a plain 400 response.
func (r *Resolver) Middleware(onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			resolved, err := r.ResolveRequest(req)
			if err != nil {
				onError(w, req, err)
				return
			}

			ctx := ContextWithOrigin(req.Context(), resolved)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
