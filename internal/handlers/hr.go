package handlers

import (
	"net/http"

	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
)

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Employees())
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e models.Employee
	if !decode(w, r, &e) {
		return
	}
	e, err := h.Store.AddEmployee(r.Context(), e)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var e models.Employee
	if !decode(w, r, &e) {
		return
	}
	e.ID = r.PathValue("id")
	if err := h.Store.UpdateEmployee(r.Context(), e); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// PaySalary: POST /api/employees/{id}/salary
func (h *Handler) PaySalary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount  float64 `json:"amount"`
		Account string  `json:"account"`
	}
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.Store.PaySalary(r.Context(), r.PathValue("id"), req.Amount, req.Account)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if tx.ID == "" {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.RecurringExpenses())
}

func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	var re models.RecurringExpense
	if !decode(w, r, &re) {
		return
	}
	re, err := h.Store.AddRecurring(r.Context(), re)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, re)
}

func (h *Handler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteRecurring(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// ProcessRecurring: POST /api/recurring/{id}/process – pays one occurrence.
func (h *Handler) ProcessRecurring(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Store.ProcessRecurring(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if tx.ID == "" {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}
