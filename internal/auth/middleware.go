package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type contextKey struct{}

var claimsKey contextKey

// ClaimsFromContext returns the verified claims attached by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// WithClaims attaches claims to ctx the same way Middleware does.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// isPublic reports whether the request may pass without a token: reads
// of products and categories, the login/register endpoints, and static
// uploads.
func isPublic(r *http.Request) bool {
	path := r.URL.Path

	if r.Method == http.MethodGet || r.Method == http.MethodOptions {
		if strings.HasPrefix(path, "/api/v1/products") ||
			strings.HasPrefix(path, "/api/v1/categories") ||
			strings.HasPrefix(path, "/public/uploads") {
			return true
		}
	}

	return path == "/api/v1/users/login" || path == "/api/v1/users/register" || path == "/health"
}

// Middleware requires a valid Bearer token on every non-public route and
// attaches the claims to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "no token provided")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			unauthorized(w, "token format is invalid")
			return
		}

		claims, err := m.Verify(tokenString)
		if err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("auth: token rejected")
			unauthorized(w, "token is invalid")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards routes reserved for admin users. It must run after
// Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
