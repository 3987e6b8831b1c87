package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	return u, ok
}

// Lookup resolves a user id to a user; satisfied by *Repo.
type Lookup interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// RequireAuth parses the Bearer token and loads the user into the request
// context. The core trusts the identifier the token resolves to.
func RequireAuth(issuer TokenIssuer, lookup Lookup, unauthorized func(w http.ResponseWriter, msg string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "not authorized, no token")
				return
			}
			userID, _, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "not authorized, token failed")
				return
			}
			u, err := lookup.GetByID(r.Context(), userID)
			if err != nil {
				unauthorized(w, "not authorized, user not found")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireRole gates a subtree to buyers or sellers. Must run after RequireAuth.
func RequireRole(role string, forbidden func(w http.ResponseWriter, msg string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u.Role != role {
				forbidden(w, "not authorized as a "+role)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
