package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/solenne/studio-booking/internal/http/response"
	"github.com/solenne/studio-booking/internal/platform/auth"
	"github.com/solenne/studio-booking/pkg/logger"
)

type ctxKey string

const (
	ctxClaims     ctxKey = "claims"
	ctxCookieAuth ctxKey = "cookie_auth"
)

// Authenticator extracts the bearer token from the Authorization header or
// from the access cookie, in that order, and stores the validated claims
// in the request context.
type Authenticator struct {
	tokenMgr         *auth.TokenManager
	accessCookieName string
}

func NewAuthenticator(tokenMgr *auth.TokenManager, accessCookieName string) *Authenticator {
	return &Authenticator{tokenMgr: tokenMgr, accessCookieName: accessCookieName}
}

func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, fromCookie := a.extractToken(r)
		if raw == "" {
			response.Unauthorized(w, "missing credentials")
			return
		}

		claims, err := a.tokenMgr.Parse(raw)
		if err != nil {
			response.Unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxClaims, claims)
		ctx = context.WithValue(ctx, ctxCookieAuth, fromCookie)
		ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a subtree on a role claim. Admin always passes.
func (a *Authenticator) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r)
			if claims == nil {
				response.Unauthorized(w, "missing credentials")
				return
			}
			if claims.Role != role && claims.Role != "admin" {
				response.Forbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) extractToken(r *http.Request) (raw string, fromCookie bool) {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer "), false
	}
	if c, err := r.Cookie(a.accessCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(ctxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}

// AuthedViaCookie reports whether the request authenticated with the
// access cookie rather than an Authorization header.
func AuthedViaCookie(r *http.Request) bool {
	v, _ := r.Context().Value(ctxCookieAuth).(bool)
	return v
}
