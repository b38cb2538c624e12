package middleware

import (
	"context"
	"net/http"
	"time"
)

// RequestTimeout bounds each request context with the given duration.
// Submission to the access point deliberately detaches from this context,
// so the timeout only governs the synchronous part of a request.
func RequestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
