package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Erkan3034/yurtgate/users"
)

type contextKey int

const profileKey contextKey = iota

// AuthMiddleware authenticates a bearer access token and stores the
// freshly loaded user on the request context. Loading from the store
// (rather than trusting the claims wholesale) means role changes and
// deletions take effect on the next request, not at token expiry.
func (a *API) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := a.tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		user, err := a.store.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			// The account is gone; the token is as good as revoked.
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), profileKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(profileKey).(*users.User)
	return u
}
