package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/ctxkeys"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/respond"
)

// Identifier resolves a bearer token to the calling identity.
type Identifier interface {
	Identify(ctx context.Context, token string) (*model.Identity, error)
}

// Authenticate reads an "Authorization: Bearer" token and stores the
// resolved identity in the request context. Requests without a token pass
// through anonymously; requests with a bad token are rejected.
func Authenticate(identifier Identifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respond.Error(w, r, apperr.New(apperr.KindUnauthorized, "malformed authorization header"))
				return
			}

			identity, err := identifier.Identify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects anonymous callers with 401 and callers below role
// with 403.
func RequireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity := ctxkeys.Identity(r.Context())
			if identity == nil {
				respond.Error(w, r, apperr.New(apperr.KindUnauthorized, "authentication required"))
				return
			}
			if !model.HasRole(identity.Role, role) {
				respond.Error(w, r, apperr.New(apperr.KindForbidden, "insufficient permissions"))
				return
			}
			next(w, r)
		}
	}
}
