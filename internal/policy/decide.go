package policy

import (
	"context"

	"github.com/diewo77/go-users/gate"
)

type rule func(actor Actor, target Ownable) bool

func adminOnly(Actor, Ownable) bool { return false }

func ownerOnly(actor Actor, target Ownable) bool {
	return target != nil && actor.ID != 0 && target.GetUserID() == actor.ID
}

// rules lists the non-admin rule per operation. Admins never reach it.
var rules = map[gate.Action]rule{
	gate.ActionViewAny:      adminOnly,
	gate.ActionView:         ownerOnly,
	gate.ActionCreate:       adminOnly,
	gate.ActionUpdate:       ownerOnly,
	gate.ActionUpdateStatus: adminOnly,
	gate.ActionDelete:       adminOnly,
	gate.ActionRestore:      adminOnly,
	gate.ActionForceDelete:  adminOnly,
}

// Decide reports whether actor may perform action on target. target is nil
// for operations without a resource. Admins are allowed every action,
// including ones missing from the table; other unknown actions are denied.
func Decide(actor Actor, action gate.Action, target Ownable) bool {
	if actor.IsAdmin {
		return true
	}
	r, ok := rules[action]
	if !ok {
		return false
	}
	return r(actor, target)
}

// UserPolicy adapts Decide to the gate.Policy interface.
type UserPolicy struct{}

func NewUserPolicy() *UserPolicy { return &UserPolicy{} }

// Can denies resources that are not Ownable.
func (UserPolicy) Can(_ context.Context, actor Actor, action gate.Action, resource any) bool {
	if resource == nil {
		return Decide(actor, action, nil)
	}
	target, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return Decide(actor, action, target)
}
