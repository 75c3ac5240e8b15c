package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diewo77/go-users/gate"
)

// DecisionHook observes every authorization decision.
type DecisionHook func(engine, action string, allowed bool)

// Instrumented reports the decisions of an inner policy to a hook.
type Instrumented struct {
	inner  gate.Policy[Actor]
	engine string
	hook   DecisionHook
}

func NewInstrumented(inner gate.Policy[Actor], engine string, hook DecisionHook) *Instrumented {
	return &Instrumented{inner: inner, engine: engine, hook: hook}
}

func (p *Instrumented) Can(ctx context.Context, actor Actor, action gate.Action, resource any) bool {
	allowed := p.inner.Can(ctx, actor, action, resource)
	if p.hook != nil {
		p.hook(p.engine, string(action), allowed)
	}
	if !allowed {
		slog.DebugContext(ctx, "policy denied", "engine", p.engine, "action", action, "actor", actor.ID)
	}
	return allowed
}

// New returns the user policy for engine ("table" or "casbin").
func New(engine string) (gate.Policy[Actor], error) {
	switch engine {
	case "", "table":
		return NewUserPolicy(), nil
	case "casbin":
		return NewCasbinPolicy()
	default:
		return nil, fmt.Errorf("policy: unknown engine %q", engine)
	}
}
