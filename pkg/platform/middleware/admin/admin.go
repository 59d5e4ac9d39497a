package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"clientview/pkg/requestcontext"
)

const (
	HeaderAdminToken    = "X-Admin-Token"
	HeaderAdminRawToken = "X-Admin-Raw-Token"
)

// RequireAdminToken guards maintenance routes. With no token configured the
// routes are closed (403) rather than open.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireToken(HeaderAdminToken, expectedToken, logger)
}

// RequireRawToken is the second credential for unrestricted collection access.
func RequireRawToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireToken(HeaderAdminRawToken, expectedToken, logger)
}

func requireToken(header, expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if expectedToken == "" {
				logger.WarnContext(ctx, "admin route disabled",
					"header", header,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeError(w, http.StatusForbidden, `{"error":"forbidden","error_description":"admin access is not configured"}`)
				return
			}

			token := r.Header.Get(header)
			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"header", header,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeError(w, http.StatusUnauthorized, `{"error":"unauthorized","error_description":"admin token required"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
