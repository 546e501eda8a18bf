// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rtvote/rtvote-server/auth"
)

// TokenParser validates bearer tokens. *auth.TokenIssuer satisfies it.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type claimsKey struct{}

// WithClaims stores validated claims on ctx
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims set by RequireAuth
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(tokens TokenParser, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// RequireAdmin is RequireAuth plus the admin check
func RequireAdmin(tokens TokenParser, next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(tokens, func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if !claims.Admin {
			ErrorResponse(w, http.StatusForbidden, "Unauthorized access")
			return
		}
		next(w, r)
	})
}
