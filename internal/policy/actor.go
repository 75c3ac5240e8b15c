// Package policy decides which user-management operations an actor may
// perform and wires those decisions into the request pipeline.
package policy

import "context"

// Actor is the identity performing a request. The zero Actor is anonymous.
type Actor struct {
	ID      uint
	IsAdmin bool
}

// Ownable is an interface for resources that have an owner.
// A user owns its own record.
type Ownable interface {
	GetUserID() uint
}

type ctxKey struct{}

// WithActor stores the resolved actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok && a.ID != 0
}
