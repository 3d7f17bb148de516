package handlers

import (
	"net/http"

	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

var invoiceStatuses = []string{
	string(models.InvoiceStatusDraft),
	string(models.InvoiceStatusIssued),
	string(models.InvoiceStatusPaid),
	string(models.InvoiceStatusCancelled),
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Invoices())
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Store.Invoice(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// InvoiceTotals: GET /api/invoices/{id}/totals – net, tax and gross at the
// current tax rate.
func (h *Handler) InvoiceTotals(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Store.Invoice(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Invoices.ComputeTotals(inv))
}

// CreateInvoice: POST /api/invoices – the number is assigned from the type
// and year.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv models.Invoice
	if !decode(w, r, &inv) {
		return
	}
	inv, err := h.Store.AddInvoice(r.Context(), inv)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Store.Invoice(id); err != nil {
		h.fail(w, r, err)
		return
	}
	var inv models.Invoice
	if !decode(w, r, &inv) {
		return
	}
	inv.ID = id
	if err := h.Store.UpdateInvoice(r.Context(), inv); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) SetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	v := validation.Violations{}
	validation.Required("status", string(req.Status), v)
	validation.OneOf("status", string(req.Status), invoiceStatuses, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	id := r.PathValue("id")
	if _, err := h.Store.Invoice(id); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Store.UpdateInvoiceStatus(r.Context(), id, req.Status); err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.Store.Invoice(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteInvoice(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}
