// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"nairapay/internal/service"
)

// actorKey is the context key under which the authenticated actor's user ID
// is stored. Core operations receive the actor explicitly from the request
// context rather than reading any ambient session state.
type actorKey struct{}

// Authenticator returns middleware that verifies the bearer token and puts
// the authenticated actor identity into the request context.
func Authenticator(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, `{"error":"missing or malformed authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(token)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorID returns the authenticated user's ID from the request context.
func ActorID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorKey{}).(int64)
	return id, ok
}

// WithActorID returns a context carrying the given actor identity.
// Exposed for tests.
func WithActorID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}
