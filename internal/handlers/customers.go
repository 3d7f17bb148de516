package handlers

import (
	"net/http"

	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/store"
)

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Customers())
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Customer(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if !decode(w, r, &c) {
		return
	}
	c, err := h.Store.AddCustomer(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Store.Customer(id); err != nil {
		h.fail(w, r, err)
		return
	}
	var c models.Customer
	if !decode(w, r, &c) {
		return
	}
	c.ID = id
	if err := h.Store.UpdateCustomer(r.Context(), c); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCustomer(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// SetCustomerStatus: PUT /api/customers/{id}/status – any stage to any stage.
func (h *Handler) SetCustomerStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.CustomerStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if _, err := h.Store.Customer(id); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.SetCustomerStatus(r.Context(), id, req.Status); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":               req.Status,
		"requiresConfirmation": req.Status.RequiresConfirmation(),
	})
}

// RecordPayment: POST /api/customers/{id}/payments
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var p store.Payment
	if !decode(w, r, &p) {
		return
	}
	p.CustomerID = r.PathValue("id")
	if _, err := h.Store.Customer(p.CustomerID); err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := h.Store.RecordCustomerPayment(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) ListInspections(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Inspections())
}

func (h *Handler) CreateInspection(w http.ResponseWriter, r *http.Request) {
	var in models.Inspection
	if !decode(w, r, &in) {
		return
	}
	in, err := h.Store.AddInspection(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, in)
}

func (h *Handler) UpdateInspection(w http.ResponseWriter, r *http.Request) {
	var in models.Inspection
	if !decode(w, r, &in) {
		return
	}
	in.ID = r.PathValue("id")
	if err := h.Store.UpdateInspection(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, in)
}

func (h *Handler) DeleteInspection(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteInspection(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}
