package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/kinz/auth"
	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/store"
)

// AuthGate holds the configured HybridGate with caching.
type AuthGate struct {
	Gate          *gate.HybridGate[string]
	CacheResolver *gate.CachedResolver[string]
}

// NewAuthGate creates a gate resolving profiles from users, cached for
// cacheTTL.
func NewAuthGate(users UserSource, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[string](NewStoreProfileResolver(users), cacheTTL)
	g := &AuthGate{
		Gate:          gate.NewHybridGate[string](cached),
		CacheResolver: cached,
	}
	g.RegisterPolicy(ResUser, NewSelfProtectPolicy())
	return g
}

func (ag *AuthGate) RegisterPolicy(resourceType string, p gate.Policy[string]) {
	ag.Gate.Register(resourceType, p)
}

// Watch drops cached profiles whenever the users collection changes. The
// returned func stops watching.
func (ag *AuthGate) Watch(s *store.Store) func() {
	return s.Subscribe(func(e store.Event) {
		if e.Collection == store.Users {
			ag.InvalidateAll()
		}
	})
}

// Authorize checks if the current user can perform an action on a resource.
// Returns nil if authorized, an error wrapping gate.ErrUnauthorized otherwise.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}

// CanProfile checks only profile permissions, before a record is loaded.
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, userID, action, resourceType)
}

func (ag *AuthGate) InvalidateUser(userID string) {
	ag.CacheResolver.Invalidate(userID)
}

func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

// RequirePermission returns middleware answering 403 unless the profile
// grants resourceType:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !ag.CanProfile(r.Context(), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only lets users with the admin
// role through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			profile, err := ag.CacheResolver.Resolve(r.Context(), userID)
			if err != nil || profile == nil || profile.Name() != models.RoleAdmin {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
