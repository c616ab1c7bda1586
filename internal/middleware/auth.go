package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/identity"
)

// actorKey is the context key under which the resolved actor is stored.
// An unexported struct type cannot collide with keys from other packages.
type actorKey struct{}

// NewAuth returns a middleware that resolves the request's bearer credential
// to a principal and stores it in the request context. Requests without a
// resolvable credential get 401 before reaching any handler.
//
// Role enforcement does NOT happen here: each service operation checks its
// own guard, so a missing route-level check can never silently widen access.
func NewAuth(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}

			actor, err := resolver.Resolve(r.Context(), credential)
			if err != nil {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom extracts the resolved principal stored by NewAuth.
// The second return is false when the request skipped the auth middleware.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// WithActor returns a context carrying the given actor. Test helper for
// exercising handlers without the full middleware stack.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	return token, token != ""
}
