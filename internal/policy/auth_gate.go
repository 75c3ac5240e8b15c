package policy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/go-users/auth"
	"github.com/diewo77/go-users/gate"
	"github.com/diewo77/go-users/httpx"
)

// ResourceUser is the gate registration name of the user policy.
const ResourceUser = "user"

// AuthGate combines the actor resolver with the gate of registered policies.
type AuthGate struct {
	Gate     *gate.Gate[Actor]
	Resolver ActorResolver
}

// NewAuthGate builds the gate with userPolicy for ResourceUser.
func NewAuthGate(resolver ActorResolver, userPolicy gate.Policy[Actor]) *AuthGate {
	g := gate.NewGate(map[string]gate.Policy[Actor]{ResourceUser: userPolicy})
	return &AuthGate{Gate: g, Resolver: resolver}
}

// Authorize checks the actor in ctx against the policy of resourceType.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	actor, _ := ActorFromContext(ctx)
	return ag.Gate.Authorize(ctx, actor, action, resourceType, resource)
}

// Can is a convenience method that returns bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}

// Middleware resolves the actor of the authenticated user id once per
// request. Vanished users stay anonymous, store failures answer 500.
func (ag *AuthGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := ag.Resolver.Resolve(r.Context(), uid)
		switch {
		case errors.Is(err, ErrUnknownActor):
			next.ServeHTTP(w, r)
		case err != nil:
			slog.ErrorContext(r.Context(), "resolve actor failed", "user_id", uid, "err", err)
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", "")
		default:
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
	})
}

// Verify is an auth.UserVerifier accepting requests whose actor was resolved.
func Verify(ctx context.Context, uid uint) bool {
	actor, ok := ActorFromContext(ctx)
	return ok && actor.ID == uid
}

var _ auth.UserVerifier = Verify
