package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/kinz/auth"
	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/validation"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login: POST /api/login – username or email plus password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	v := validation.Violations{}
	validation.Required("login", req.Login, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	u, ok := h.Store.Login(r.Context(), strings.TrimSpace(req.Login), req.Password)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, u.ID)
	h.log.Info().Str("user", u.Username).Msg("login")
	httpx.JSON(w, http.StatusOK, u)
}

// Logout: POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Store.Logout(r.Context())
	auth.ClearSession(w)
	noContent(w)
}

// Me: GET /api/me – the session user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	u, err := h.Store.User(uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
