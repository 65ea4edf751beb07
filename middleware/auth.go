package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"chocobliss/apperr"
	"chocobliss/models"
	"chocobliss/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// Auth verifies bearer tokens and attaches the claims to the request context.
type Auth struct {
	Tokens *utils.TokenIssuer
}

func NewAuth(tokens *utils.TokenIssuer) *Auth {
	return &Auth{Tokens: tokens}
}

// ClaimsFrom returns the verified caller, if any.
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	c, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return c, ok
}

// bearer extracts the token from the Authorization header, falling back to
// the access_token query parameter used by websocket clients.
func bearer(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if t := r.URL.Query().Get("access_token"); t != "" {
		return t, true
	}
	return "", false
}

// RequireAuth rejects requests without a valid token.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearer(r)
		if !ok {
			deny(w, apperr.ErrUnauthorized, "Access token required")
			return
		}
		claims, err := a.Tokens.Parse(tok)
		if err != nil {
			deny(w, apperr.ErrUnauthorized, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches claims when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok, ok := bearer(r); ok {
			if claims, err := a.Tokens.Parse(tok); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AdminOnly requires a verified admin. It must run after RequireAuth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			deny(w, apperr.ErrUnauthorized, "Access token required")
			return
		}
		if claims.Role != models.RoleAdmin {
			deny(w, apperr.ErrForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, err error, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "kind": apperr.Kind(err)})
}
