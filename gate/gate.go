// Package gate provides a Laravel-inspired Gate/Policy authorization system.
// A Gate maps resource types to policies and turns their boolean answers into
// the errors callers report: unauthenticated, forbidden, or no policy.
//
// The subject type is generic, so a gate can authorize a bare user id
// (Gate[uint]) or a resolved identity such as policy.Actor.
package gate

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Gate is read-only once built and safe for concurrent use.
type Gate[U comparable] struct {
	policies map[string]Policy[U]
}

// NewGate builds a gate over policies, keyed by resource type. The map is
// copied.
func NewGate[U comparable](policies map[string]Policy[U]) *Gate[U] {
	return &Gate[U]{policies: maps.Clone(policies)}
}

// Resources lists the resource types that have a policy, sorted.
func (g *Gate[U]) Resources() []string {
	return slices.Sorted(maps.Keys(g.policies))
}

// Authorize returns ErrUnauthenticated for the zero subject, an error
// wrapping ErrNoPolicyDefined for an unknown resource type and a
// *DeniedError when the policy refuses.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthenticated
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoPolicyDefined, resourceType)
	}
	if !p.Can(ctx, user, action, resource) {
		return &DeniedError{Resource: resourceType, Action: action}
	}
	return nil
}

// Can reports whether Authorize would succeed.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
