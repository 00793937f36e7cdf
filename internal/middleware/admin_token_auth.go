package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"nameparse/internal/logging"
	"nameparse/internal/observability"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "X-Admin-Token"

// AdminTokenAuthConfig controls shared-token authentication for admin endpoints.
type AdminTokenAuthConfig struct {
	Token      string
	HeaderName string
	// Metrics is optional; rejected requests are counted when set.
	Metrics *observability.ParseMetrics
}

// AdminTokenAuthMiddleware validates a shared admin token from request headers.
func AdminTokenAuthMiddleware(cfg AdminTokenAuthConfig) (func(http.Handler) http.Handler, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("admin auth token is required")
	}
	headerName := strings.TrimSpace(cfg.HeaderName)
	if headerName == "" {
		headerName = AdminTokenHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimSpace(r.Header.Get(headerName))
			if !constantTimeTokenMatch(provided, token) {
				reason := "invalid_token"
				if provided == "" {
					reason = "missing_token"
				}
				cfg.Metrics.RecordAdminDenied(r.Context(), reason)
				logging.FromContext(r.Context()).Warn("admin request rejected",
					slog.String("path", r.URL.Path),
					slog.String("reason", reason),
				)
				writeAdminUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func constantTimeTokenMatch(provided string, expected string) bool {
	providedDigest := sha256.Sum256([]byte(provided))
	expectedDigest := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(providedDigest[:], expectedDigest[:]) == 1
}

func writeAdminUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprint(w, `{"error":"unauthorized"}`)
}
