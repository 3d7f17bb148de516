package handlers

import (
	"net/http"

	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/store"
)

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	if serial := r.URL.Query().Get("serial"); serial != "" {
		httpx.JSON(w, http.StatusOK, h.Store.PurchaseGroup(serial))
		return
	}
	httpx.JSON(w, http.StatusOK, h.Store.Purchases())
}

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var p models.Purchase
	if !decode(w, r, &p) {
		return
	}
	p, err := h.Store.AddPurchase(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// CreateBulkPurchase: POST /api/purchases/bulk – several materials from one
// supplier paid with a single expense.
func (h *Handler) CreateBulkPurchase(w http.ResponseWriter, r *http.Request) {
	var b store.BulkPurchase
	if !decode(w, r, &b) {
		return
	}
	lines, err := h.Store.AddBulkPurchase(r.Context(), b)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lines)
}

// CreateServiceOrder: POST /api/purchases/services – services bought for a
// customer, one expense per line.
func (h *Handler) CreateServiceOrder(w http.ResponseWriter, r *http.Request) {
	var o store.ServiceOrder
	if !decode(w, r, &o) {
		return
	}
	lines, err := h.Store.AddServiceOrder(r.Context(), o)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lines)
}

func (h *Handler) UpdatePurchase(w http.ResponseWriter, r *http.Request) {
	var p models.Purchase
	if !decode(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")
	if err := h.Store.UpdatePurchase(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePurchase(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// DeletePurchaseGroup: DELETE /api/purchases/groups/{serial}
func (h *Handler) DeletePurchaseGroup(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.DeletePurchaseGroup(r.Context(), r.PathValue("serial"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("low") != "" {
		httpx.JSON(w, http.StatusOK, h.Store.LowStock())
		return
	}
	httpx.JSON(w, http.StatusOK, h.Store.Inventory())
}

func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Movements())
}

func (h *Handler) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if !decode(w, r, &item) {
		return
	}
	item, err := h.Store.AddInventoryItem(r.Context(), item)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if !decode(w, r, &item) {
		return
	}
	item.ID = r.PathValue("id")
	if err := h.Store.UpdateInventoryItem(r.Context(), item); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteInventoryItem(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// ConsumeMaterial: POST /api/inventory/consume – stock drawn for production.
func (h *Handler) ConsumeMaterial(w http.ResponseWriter, r *http.Request) {
	var c store.Consumption
	if !decode(w, r, &c) {
		return
	}
	m, err := h.Store.ConsumeMaterial(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) ListServiceItems(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.ServiceItems())
}

func (h *Handler) CreateServiceItem(w http.ResponseWriter, r *http.Request) {
	var item models.ServiceItem
	if !decode(w, r, &item) {
		return
	}
	item, err := h.Store.AddServiceItem(r.Context(), item)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) DeleteServiceItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteServiceItem(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}
