package handlers

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
)

const topCustomers = 4

type dashboardBody struct {
	Customers      int               `json:"customers"`
	Purchases      int               `json:"purchases"`
	TotalPurchases float64           `json:"totalPurchases"`
	LowStockItems  int               `json:"lowStockItems"`
	ItemsInStock   float64           `json:"itemsInStock"`
	Revenue        float64           `json:"revenue"`
	Accounts       []models.Account  `json:"accounts"`
	TopCustomers   []models.Customer `json:"topCustomers"`
}

// Dashboard: GET /api/dashboard – headline figures.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	customers := h.Store.Customers()
	purchases := h.Store.Purchases()

	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(decimal.NewFromFloat(p.Total))
	}
	stock := decimal.Zero
	for _, item := range h.Store.Inventory() {
		stock = stock.Add(decimal.NewFromFloat(item.Stock))
	}

	top := append([]models.Customer(nil), customers...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Balance > top[j].Balance })
	if len(top) > topCustomers {
		top = top[:topCustomers]
	}

	httpx.JSON(w, http.StatusOK, dashboardBody{
		Customers:      len(customers),
		Purchases:      len(purchases),
		TotalPurchases: total.Round(2).InexactFloat64(),
		LowStockItems:  len(h.Store.LowStock()),
		ItemsInStock:   stock.InexactFloat64(),
		Revenue:        h.Invoices.Revenue(),
		Accounts:       h.Store.Accounts(),
		TopCustomers:   top,
	})
}

// ListDeliveries: GET /api/deliveries – projects being or already delivered.
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	out := []models.Customer{}
	for _, c := range h.Store.Customers() {
		if c.Status == models.CustomerDelivery || c.Status == models.CustomerDelivered {
			out = append(out, c)
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// CompleteDelivery: POST /api/deliveries/{id}/complete – marks the project
// delivered. Already delivered projects are left alone.
func (h *Handler) CompleteDelivery(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Customer(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if c.Status != models.CustomerDelivered {
		if err := h.Store.SetCustomerStatus(r.Context(), c.ID, models.CustomerDelivered); err != nil {
			h.fail(w, r, err)
			return
		}
		c.Status = models.CustomerDelivered
	}
	httpx.JSON(w, http.StatusOK, c)
}
