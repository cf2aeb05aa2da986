// ABOUTME: HTTP middleware enforcing bearer authentication on protocol paths.
// ABOUTME: Extracts the bearer credential and verifies it before routing.

package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Middleware creates an HTTP middleware that requires a verified bearer
// credential on every request whose URL path begins with prefix. Other
// paths pass through untouched. A nil verifier disables the gate (open
// mode). Rejections are always the same generic 401 body; the reason is
// only logged.
func Middleware(prefix string, verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil || !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				logger.Debug("request rejected", "path", r.URL.Path, "reason", errMsg)
				writeUnauthorized(w)
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("request rejected", "path", r.URL.Path, "reason", err)
				writeUnauthorized(w)
				return
			}

			if subject != "" {
				logger.Debug("request authenticated", "path", r.URL.Path, "subject", subject)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized sends the generic rejection body. No detail about
// the failure is disclosed to the caller.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}
