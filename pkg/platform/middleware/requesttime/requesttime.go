// Package requesttime stamps each request with a single "now" so that audit
// records and created documents within one request agree on the time.
package requesttime

import (
	"net/http"
	"time"

	"clientview/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
