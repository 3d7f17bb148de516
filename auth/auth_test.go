package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, uid string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	CreateSession(w, uid)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() { SetSecret("") })

	for _, uid := range []string{"1", "7f0c8a3e-2b1d-4c55-9d0e-3a2f1b6c9e11", "a.b"} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(sessionCookie(t, uid))
		got, ok := ParseSession(r)
		require.True(t, ok, uid)
		assert.Equal(t, uid, got)
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() { SetSecret("") })

	c := sessionCookie(t, "1")
	c.Value = "2" + c.Value[1:]
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	_, ok := ParseSession(r)
	assert.False(t, ok)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "nodot"})
	_, ok = ParseSession(r)
	assert.False(t, ok)

	c = sessionCookie(t, "1")
	SetSecret("rotated")
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	_, ok = ParseSession(r)
	assert.False(t, ok)
}

func TestRequireAuth(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() {
		SetSecret("")
		SetUserVerifier(nil)
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		_, _ = w.Write([]byte(uid))
	})
	h := Middleware(RequireAuth(ok))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessionCookie(t, "1"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Body.String())

	SetUserVerifier(func(_ context.Context, uid string) bool { return uid != "1" })
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
