package handlers

import (
	"net/http"

	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
)

const resourceUser = "user"

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Users())
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if !decode(w, r, &u) {
		return
	}
	u, err := h.Store.AddUser(r.Context(), u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

// UpdateUser: PUT /api/users/{id} – an empty password keeps the current one.
// Users cannot take user management away from themselves.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Store.User(id); err != nil {
		h.fail(w, r, err)
		return
	}
	var u models.User
	if !decode(w, r, &u) {
		return
	}
	u.ID = id
	if err := h.Gate.Authorize(r.Context(), gate.ActionUpdate, resourceUser, u); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.UpdateUser(r.Context(), u); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u.Public())
}

// DeleteUser: DELETE /api/users/{id} – never the caller's own account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.User(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Gate.Authorize(r.Context(), gate.ActionDelete, resourceUser, u); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.DeleteUser(r.Context(), u.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}
