package policy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/kinz/auth"
	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/internal/cache"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	c, err := cache.Open("file:"+t.Name()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	var (
		mu sync.Mutex
		n  int
	)
	return store.New(store.Options{
		Cache: c,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
}

func addClerk(t *testing.T, s *store.Store, perms map[string]bool) models.User {
	t.Helper()
	u, err := s.AddUser(context.Background(), models.User{
		Name: "Clerk", Username: "clerk", Password: "pw", Role: models.RoleUser, Permissions: perms,
	})
	require.NoError(t, err)
	return u
}

func TestProfileForMapsCapabilities(t *testing.T) {
	p := ProfileFor(models.User{Role: models.RoleUser, Permissions: map[string]bool{
		models.PermManagePurchases: true,
		models.PermManageUsers:     true,
		models.PermManageHR:        false,
	}})

	assert.Equal(t, models.RoleUser, p.Name())
	assert.Equal(t, []gate.Permission{"purchase:*", "settings:*", "user:*"}, p.Permissions())
	assert.True(t, p.HasPermission("purchase:delete"))
	assert.False(t, p.HasPermission("hr:list"))
}

func TestAdminWithoutCapabilityIsDenied(t *testing.T) {
	perms := models.AdminPermissions()
	perms[models.PermManageHR] = false
	p := ProfileFor(models.User{Role: models.RoleAdmin, Permissions: perms})
	assert.False(t, p.HasPermission("hr:list"))
	assert.True(t, p.HasPermission("inspection:create"))
}

func TestStoreProfileResolver(t *testing.T) {
	s := newTestStore(t)
	r := NewStoreProfileResolver(s)
	ctx := context.Background()

	p, err := r.Resolve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Name())

	p, err = r.Resolve(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, p)

	u := addClerk(t, s, nil)
	u.Status = "disabled"
	require.NoError(t, s.UpdateUser(ctx, u))
	p, err = r.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSelfProtectPolicy(t *testing.T) {
	s := newTestStore(t)
	ag := NewAuthGate(s, time.Minute)
	ctx := auth.WithUserID(context.Background(), "1")

	self, err := s.User("1")
	require.NoError(t, err)
	other, err := s.User("2")
	require.NoError(t, err)

	assert.ErrorIs(t, ag.Authorize(ctx, gate.ActionDelete, ResUser, self), gate.ErrUnauthorized)
	assert.NoError(t, ag.Authorize(ctx, gate.ActionDelete, ResUser, other))

	demoted := self
	demoted.Permissions = models.DefaultPermissions()
	assert.Error(t, ag.Authorize(ctx, gate.ActionUpdate, ResUser, demoted))
	self.Name = "Boss"
	assert.NoError(t, ag.Authorize(ctx, gate.ActionUpdate, ResUser, self))
}

func TestWatchInvalidatesOnUserChange(t *testing.T) {
	s := newTestStore(t)
	ag := NewAuthGate(s, time.Hour)
	stop := ag.Watch(s)
	t.Cleanup(stop)

	u := addClerk(t, s, map[string]bool{models.PermManageCustomers: true})
	ctx := auth.WithUserID(context.Background(), u.ID)
	require.True(t, ag.CanProfile(ctx, gate.ActionList, ResCustomer))
	assert.False(t, ag.CanProfile(ctx, gate.ActionList, ResFinance))

	u.Permissions = map[string]bool{models.PermManageFinance: true}
	require.NoError(t, s.UpdateUser(context.Background(), u))
	assert.True(t, ag.CanProfile(ctx, gate.ActionList, ResFinance))
	assert.False(t, ag.CanProfile(ctx, gate.ActionList, ResCustomer))
}

func TestRequirePermissionMiddleware(t *testing.T) {
	s := newTestStore(t)
	ag := NewAuthGate(s, time.Minute)
	u := addClerk(t, s, map[string]bool{models.PermManageInventory: true})
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	run := func(uid string, mw func(http.Handler) http.Handler) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if uid != "" {
			r = r.WithContext(auth.WithUserID(r.Context(), uid))
		}
		w := httptest.NewRecorder()
		mw(ok).ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusTeapot, run(u.ID, ag.RequirePermission(ResInventory, gate.ActionDelete)).Code)
	w := run(u.ID, ag.RequirePermission(ResFinance, gate.ActionList))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, run("", ag.RequirePermission(ResInventory, gate.ActionList)).Code)

	assert.Equal(t, http.StatusForbidden, run(u.ID, ag.RequireAdmin()).Code)
	assert.Equal(t, http.StatusTeapot, run("1", ag.RequireAdmin()).Code)
}

func TestRoutesEndToEnd(t *testing.T) {
	auth.SetSecret("test-secret")
	t.Cleanup(func() { auth.SetSecret("") })

	s := newTestStore(t)
	addClerk(t, s, map[string]bool{models.PermManageCustomers: true})
	cfg := NewRouterConfig(s, nil)
	mux := http.NewServeMux()
	cfg.Register(mux)
	srv := httptest.NewServer(auth.Middleware(mux))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/customers")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/login", "application/json", strings.NewReader(`{"login":"clerk","password":"pw"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)

	get := func(path string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.AddCookie(cookies[0])
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusOK, get("/api/customers"))
	assert.Equal(t, http.StatusForbidden, get("/api/accounts"))
	assert.Equal(t, http.StatusOK, get("/api/settings"))
	assert.Equal(t, http.StatusOK, get("/healthz"))
}
