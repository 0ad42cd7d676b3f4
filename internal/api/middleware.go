// Package api implements the keepnote REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/keepnote/internal/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// TokenVerifier introspects bearer tokens at the trust boundary.
type TokenVerifier interface {
	Introspect(token string) (*auth.TokenClaims, error)
}

// RequireAuth returns middleware that validates a Bearer token and stores
// its claims in the request context. If enabled is false, all requests pass
// through (local development mode).
func RequireAuth(enabled bool, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			claims, err := verifier.Introspect(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// ClaimsFrom returns the verified token claims stored by RequireAuth, or
// nil when auth is disabled.
func ClaimsFrom(ctx context.Context) *auth.TokenClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.TokenClaims)
	return claims
}
