package policy_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-users/gate"
	"github.com/diewo77/go-users/internal/policy"
)

func TestCasbinPolicy_MatchesDecisionTable(t *testing.T) {
	cp, err := policy.NewCasbinPolicy()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	actions := append([]gate.Action{}, gate.Actions...)
	actions = append(actions, gate.Action("impersonate"))
	for _, a := range actors() {
		for _, act := range actions {
			for _, target := range []policy.Ownable{nil, &mockOwnable{userID: 1}, &mockOwnable{userID: 2}} {
				var resource any
				if target != nil {
					resource = target
				}
				want := policy.Decide(a, act, target)
				if got := cp.Can(ctx, a, act, resource); got != want {
					t.Errorf("casbin Can(%+v, %s, %v) = %v, table says %v", a, act, target, got, want)
				}
			}
		}
	}
}

func TestCasbinPolicy_NonOwnableResource(t *testing.T) {
	cp, err := policy.NewCasbinPolicy()
	if err != nil {
		t.Fatal(err)
	}
	if cp.Can(context.Background(), policy.Actor{ID: 1}, gate.ActionView, &mockNonOwnable{ID: 1}) {
		t.Error("Expected non-Ownable resource to be denied")
	}
}

func TestNew(t *testing.T) {
	for _, engine := range []string{"", "table", "casbin"} {
		if _, err := policy.New(engine); err != nil {
			t.Errorf("New(%q): %v", engine, err)
		}
	}
	if _, err := policy.New("opa"); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestInstrumented(t *testing.T) {
	type call struct {
		engine, action string
		allowed        bool
	}
	var calls []call
	p := policy.NewInstrumented(policy.NewUserPolicy(), "table", func(engine, action string, allowed bool) {
		calls = append(calls, call{engine, action, allowed})
	})

	ctx := context.Background()
	if p.Can(ctx, policy.Actor{ID: 1}, gate.ActionDelete, nil) {
		t.Error("non-admin delete must be denied")
	}
	if !p.Can(ctx, policy.Actor{ID: 1, IsAdmin: true}, gate.ActionDelete, nil) {
		t.Error("admin delete must be allowed")
	}
	want := []call{{"table", "delete", false}, {"table", "delete", true}}
	if len(calls) != len(want) {
		t.Fatalf("calls = %+v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}
