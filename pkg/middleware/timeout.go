package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout puts a deadline on the request context. Handlers that honour the
// context, such as a search waiting on a vector rebuild, give up at the
// deadline and report the error themselves.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
