package auth

import (
	"context"
	"net/http"

	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/ports"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

const actorContextKey contextKey = "actor"

// ActorMiddleware turns the verified identity token into an actor with its
// role and grant table loaded. It sits behind the JWTMiddleware.
type ActorMiddleware struct {
	roles  ports.RoleRepository
	logger logger.Logger
}

func NewActorMiddleware(roles ports.RoleRepository, logger logger.Logger) *ActorMiddleware {
	return &ActorMiddleware{roles: roles, logger: logger}
}

func (m *ActorMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := IdentityToken(r.Context())
		if !ok {
			writeError(w, "unauthorized", ErrMissingToken.Error(), http.StatusUnauthorized)
			return
		}

		actor, err := m.roles.GetActor(r.Context(), subject)
		if err != nil {
			m.logger.Error(r.Context(), "failed to resolve actor", "error", err)
			writeError(w, "internal_server_error", "failed to resolve actor", http.StatusInternalServerError)
			return
		}
		if actor == nil {
			writeError(w, "unauthorized", "unknown actor", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, *actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithActor returns a context carrying the resolved actor. Handler tests
// use it to stand in for the middleware chain.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFrom extracts the resolved actor from the request context
func ActorFrom(ctx context.Context) (authz.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(authz.Actor)
	return actor, ok
}
