package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/auth"
)

type contextKey struct{}

// SessionClaimsKey holds the authenticated session claims in the request
// context.
var SessionClaimsKey = contextKey{}

// Authenticate guards a route group with bearer-token validation. The
// validated claims are stored in the request context for handlers to read.
func Authenticate(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtAuth.ValidateSessionToken(parts[1], secret)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), SessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session claims stored by Authenticate.
func SessionFromContext(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(SessionClaimsKey).(*auth.SessionClaims)
	return claims, ok
}
