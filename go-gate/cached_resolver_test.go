package gate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate "github.com/diewo77/kinz/go-gate"
)

func TestCachedResolver(t *testing.T) {
	ctx := context.Background()
	inner := gate.NewStaticResolver[string]()
	inner.Set("1", gate.NewStaticProfile("clerk"))
	inner.Set("2", gate.NewStaticProfile("viewer"))

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	cached := gate.NewCachedResolver[string](inner, 5*time.Minute).WithClock(func() time.Time { return now })

	p, err := cached.Resolve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "clerk", p.Name())

	inner.Set("1", gate.NewStaticProfile("admin"))
	p, _ = cached.Resolve(ctx, "1")
	assert.Equal(t, "clerk", p.Name(), "served from cache")

	cached.Invalidate("1")
	p, _ = cached.Resolve(ctx, "1")
	assert.Equal(t, "admin", p.Name())

	_, _ = cached.Resolve(ctx, "2")
	inner.Set("2", gate.NewStaticProfile("admin"))
	now = now.Add(6 * time.Minute)
	p, _ = cached.Resolve(ctx, "2")
	assert.Equal(t, "admin", p.Name(), "expired entry refetched")

	assert.Equal(t, 2, cached.Len())
	cached.InvalidateAll()
	assert.Zero(t, cached.Len())
}

func TestCachedResolverDoesNotCacheErrors(t *testing.T) {
	calls := 0
	fail := true
	inner := gate.ResolverFunc[string](func(context.Context, string) (gate.Profile, error) {
		calls++
		if fail {
			return nil, errors.New("store closed")
		}
		return gate.NewStaticProfile("clerk"), nil
	})
	cached := gate.NewCachedResolver[string](inner, time.Minute)

	_, err := cached.Resolve(context.Background(), "1")
	assert.Error(t, err)
	fail = false
	p, err := cached.Resolve(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "clerk", p.Name())
	assert.Equal(t, 2, calls)
}
