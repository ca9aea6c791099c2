// Package middleware provides HTTP middleware for the web layer.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"course-admin/internal/auth"
	"course-admin/internal/logging"
)

type claimsKey struct{}

// RequireAuth returns middleware that validates a Bearer token from the
// Authorization header and stores its claims in the request context.
func RequireAuth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logging.FromContext(r.Context()).Warn("auth: missing bearer token",
					"path", r.URL.Path,
					"method", r.Method,
				)
				unauthorized(w)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("auth: token rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"error", err,
				)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <tok>"
// header, or returns "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","code":"AUTH_REQUIRED"}`))
}
