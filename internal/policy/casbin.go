package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/diewo77/go-users/gate"
)

const casbinModel = `
[request_definition]
r = sub, act, rel

[policy_definition]
p = sub, act, rel

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == "role:admin" || (r.sub == p.sub && r.act == p.act && r.rel == p.rel)
`

// Relations between the actor and the target of a request.
const (
	RelNone  = "none"
	RelSelf  = "self"
	RelOther = "other"
)

// CasbinPolicy evaluates the user decision table with a casbin enforcer.
type CasbinPolicy struct {
	enforcer *casbin.Enforcer
}

// NewCasbinPolicy builds the in-memory model and loads the owner rules.
func NewCasbinPolicy() (*CasbinPolicy, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	for _, act := range []gate.Action{gate.ActionView, gate.ActionUpdate} {
		if _, err := e.AddPolicy(subjectUser, string(act), RelSelf); err != nil {
			return nil, fmt.Errorf("casbin policy: %w", err)
		}
	}
	return &CasbinPolicy{enforcer: e}, nil
}

const (
	subjectAdmin = "role:admin"
	subjectUser  = "role:user"
)

// SubjectFor maps an actor to its casbin subject.
func SubjectFor(a Actor) string {
	if a.IsAdmin {
		return subjectAdmin
	}
	return subjectUser
}

// Relation classifies target relative to actor.
func Relation(a Actor, target Ownable) string {
	switch {
	case target == nil:
		return RelNone
	case a.ID != 0 && target.GetUserID() == a.ID:
		return RelSelf
	default:
		return RelOther
	}
}

func (p *CasbinPolicy) Can(ctx context.Context, actor Actor, action gate.Action, resource any) bool {
	var target Ownable
	if resource != nil {
		o, ok := resource.(Ownable)
		if !ok {
			return false
		}
		target = o
	}
	ok, err := p.enforcer.Enforce(SubjectFor(actor), string(action), Relation(actor, target))
	if err != nil {
		slog.ErrorContext(ctx, "casbin enforce failed", "action", action, "err", err)
		return false
	}
	return ok
}
