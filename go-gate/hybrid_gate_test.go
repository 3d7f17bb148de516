package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	gate "github.com/diewo77/kinz/go-gate"
)

type record struct{ ID string }

// notSelf denies acting on the caller's own record.
var notSelf = gate.PolicyFunc[string](func(_ context.Context, user string, _ gate.Action, resource any) bool {
	r, ok := resource.(record)
	return ok && r.ID != user
})

func newTestGate() *gate.HybridGate[string] {
	r := gate.NewStaticResolver[string]()
	r.Set("admin", gate.NewStaticProfile("admin", gate.PermissionSuperAdmin))
	r.Set("clerk", gate.NewStaticProfile("clerk", "customer:view", "customer:list"))
	g := gate.NewHybridGate[string](r)
	g.Register("user", notSelf)
	return g
}

func TestHybridGateProfilePermissions(t *testing.T) {
	ctx := context.Background()
	g := newTestGate()

	assert.NoError(t, g.Authorize(ctx, "clerk", gate.ActionView, "customer", nil))
	assert.ErrorIs(t, g.Authorize(ctx, "clerk", gate.ActionDelete, "customer", nil), gate.ErrUnauthorized)
	assert.True(t, g.CanProfile(ctx, "admin", gate.ActionManage, "finance"))
	assert.False(t, g.CanProfile(ctx, "", gate.ActionView, "customer"))
}

func TestHybridGateUnknownUser(t *testing.T) {
	err := newTestGate().Authorize(context.Background(), "ghost", gate.ActionView, "customer", nil)
	assert.ErrorIs(t, err, gate.ErrUnauthorized)
	assert.ErrorIs(t, err, gate.ErrNoProfile)
}

func TestHybridGatePolicyNarrowsResource(t *testing.T) {
	ctx := context.Background()
	g := newTestGate()

	assert.True(t, g.Can(ctx, "admin", gate.ActionDelete, "user", record{ID: "clerk"}))
	assert.False(t, g.Can(ctx, "admin", gate.ActionDelete, "user", record{ID: "admin"}))
	assert.True(t, g.CanProfile(ctx, "admin", gate.ActionDelete, "user"))
}

func TestHybridGateResolverError(t *testing.T) {
	boom := errors.New("boom")
	g := gate.NewHybridGate[string](gate.ResolverFunc[string](func(context.Context, string) (gate.Profile, error) {
		return nil, boom
	}))
	err := g.Authorize(context.Background(), "1", gate.ActionView, "customer", nil)
	assert.ErrorIs(t, err, gate.ErrUnauthorized)
	assert.ErrorIs(t, err, boom)
}
