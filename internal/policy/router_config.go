package policy

import (
	"net/http"
	"time"

	"github.com/diewo77/kinz/auth"
	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/internal/handlers"
	"github.com/diewo77/kinz/internal/store"
)

// ProfileCacheTTL bounds how stale a cached profile can be when a users
// change event is missed.
const ProfileCacheTTL = 5 * time.Minute

// RouterConfig holds the configured gate and API handlers.
type RouterConfig struct {
	AuthGate *AuthGate
	API      *handlers.Handler
}

// NewRouterConfig wires the gate and the handlers over s. sync may be nil
// in local-only mode. The gate follows user changes until s is closed.
func NewRouterConfig(s *store.Store, sync handlers.Syncer) *RouterConfig {
	ag := NewAuthGate(s, ProfileCacheTTL)
	ag.Watch(s)
	return &RouterConfig{
		AuthGate: ag,
		API:      handlers.New(s, ag, sync, nil),
	}
}

// Register mounts every API route on mux. Session parsing
// (auth.Middleware) is expected around mux.
func (c *RouterConfig) Register(mux *http.ServeMux) {
	api := c.API
	authed := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }
	can := func(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(c.AuthGate.RequirePermission(resource, action)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(c.AuthGate.RequireAdmin()(h))
	}

	mux.HandleFunc("GET /healthz", api.Health)
	mux.HandleFunc("POST /api/login", api.Login)
	mux.HandleFunc("POST /api/logout", api.Logout)
	mux.Handle("GET /api/me", authed(api.Me))
	mux.Handle("GET /api/dashboard", can(ResDashboard, gate.ActionView, api.Dashboard))
	mux.Handle("GET /api/deliveries", can(ResDelivery, gate.ActionList, api.ListDeliveries))
	mux.Handle("POST /api/deliveries/{id}/complete", can(ResDelivery, gate.ActionUpdate, api.CompleteDelivery))

	mux.Handle("GET /api/customers", can(ResCustomer, gate.ActionList, api.ListCustomers))
	mux.Handle("POST /api/customers", can(ResCustomer, gate.ActionCreate, api.CreateCustomer))
	mux.Handle("GET /api/customers/{id}", can(ResCustomer, gate.ActionView, api.GetCustomer))
	mux.Handle("PUT /api/customers/{id}", can(ResCustomer, gate.ActionUpdate, api.UpdateCustomer))
	mux.Handle("DELETE /api/customers/{id}", can(ResCustomer, gate.ActionDelete, api.DeleteCustomer))
	mux.Handle("PUT /api/customers/{id}/status", can(ResCustomer, gate.ActionUpdate, api.SetCustomerStatus))
	mux.Handle("POST /api/customers/{id}/payments", can(ResFinance, gate.ActionCreate, api.RecordPayment))
	mux.Handle("POST /api/customers/{id}/adjust", can(ResFinance, gate.ActionManage, api.AdjustCustomer))

	mux.Handle("GET /api/inspections", can(ResInspection, gate.ActionList, api.ListInspections))
	mux.Handle("POST /api/inspections", can(ResInspection, gate.ActionCreate, api.CreateInspection))
	mux.Handle("PUT /api/inspections/{id}", can(ResInspection, gate.ActionUpdate, api.UpdateInspection))
	mux.Handle("DELETE /api/inspections/{id}", can(ResInspection, gate.ActionDelete, api.DeleteInspection))

	mux.Handle("GET /api/accounts", can(ResFinance, gate.ActionList, api.ListAccounts))
	mux.Handle("POST /api/accounts", can(ResFinance, gate.ActionCreate, api.CreateAccount))
	mux.Handle("PUT /api/accounts/{id}", can(ResFinance, gate.ActionUpdate, api.UpdateAccount))
	mux.Handle("DELETE /api/accounts/{id}", can(ResFinance, gate.ActionDelete, api.DeleteAccount))
	mux.Handle("POST /api/accounts/{id}/adjust", can(ResFinance, gate.ActionManage, api.AdjustAccount))
	mux.Handle("POST /api/accounts/recalculate", can(ResFinance, gate.ActionManage, api.RecalculateAccounts))
	mux.Handle("POST /api/accounts/reset", can(ResFinance, gate.ActionManage, api.ResetAccounts))

	mux.Handle("GET /api/transactions", can(ResFinance, gate.ActionList, api.ListTransactions))
	mux.Handle("POST /api/transactions", can(ResFinance, gate.ActionCreate, api.CreateTransaction))
	mux.Handle("PUT /api/transactions/{id}", can(ResFinance, gate.ActionUpdate, api.UpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", can(ResFinance, gate.ActionDelete, api.DeleteTransaction))

	mux.Handle("GET /api/purchases", can(ResPurchase, gate.ActionList, api.ListPurchases))
	mux.Handle("POST /api/purchases", can(ResPurchase, gate.ActionCreate, api.CreatePurchase))
	mux.Handle("POST /api/purchases/bulk", can(ResPurchase, gate.ActionCreate, api.CreateBulkPurchase))
	mux.Handle("POST /api/purchases/services", can(ResPurchase, gate.ActionCreate, api.CreateServiceOrder))
	mux.Handle("PUT /api/purchases/{id}", can(ResPurchase, gate.ActionUpdate, api.UpdatePurchase))
	mux.Handle("DELETE /api/purchases/{id}", can(ResPurchase, gate.ActionDelete, api.DeletePurchase))
	mux.Handle("DELETE /api/purchases/groups/{serial}", can(ResPurchase, gate.ActionDelete, api.DeletePurchaseGroup))
	mux.Handle("GET /api/service-items", can(ResPurchase, gate.ActionList, api.ListServiceItems))
	mux.Handle("POST /api/service-items", can(ResPurchase, gate.ActionCreate, api.CreateServiceItem))
	mux.Handle("DELETE /api/service-items/{id}", can(ResPurchase, gate.ActionDelete, api.DeleteServiceItem))

	mux.Handle("GET /api/inventory", can(ResInventory, gate.ActionList, api.ListInventory))
	mux.Handle("POST /api/inventory", can(ResInventory, gate.ActionCreate, api.CreateInventoryItem))
	mux.Handle("PUT /api/inventory/{id}", can(ResInventory, gate.ActionUpdate, api.UpdateInventoryItem))
	mux.Handle("DELETE /api/inventory/{id}", can(ResInventory, gate.ActionDelete, api.DeleteInventoryItem))
	mux.Handle("POST /api/inventory/consume", can(ResInventory, gate.ActionUpdate, api.ConsumeMaterial))
	mux.Handle("GET /api/inventory/movements", can(ResInventory, gate.ActionList, api.ListMovements))

	mux.Handle("GET /api/invoices", can(ResInvoice, gate.ActionList, api.ListInvoices))
	mux.Handle("POST /api/invoices", can(ResInvoice, gate.ActionCreate, api.CreateInvoice))
	mux.Handle("GET /api/invoices/{id}", can(ResInvoice, gate.ActionView, api.GetInvoice))
	mux.Handle("GET /api/invoices/{id}/totals", can(ResInvoice, gate.ActionView, api.InvoiceTotals))
	mux.Handle("PUT /api/invoices/{id}", can(ResInvoice, gate.ActionUpdate, api.UpdateInvoice))
	mux.Handle("PUT /api/invoices/{id}/status", can(ResInvoice, gate.ActionUpdate, api.SetInvoiceStatus))
	mux.Handle("DELETE /api/invoices/{id}", can(ResInvoice, gate.ActionDelete, api.DeleteInvoice))

	mux.Handle("GET /api/employees", can(ResHR, gate.ActionList, api.ListEmployees))
	mux.Handle("POST /api/employees", can(ResHR, gate.ActionCreate, api.CreateEmployee))
	mux.Handle("PUT /api/employees/{id}", can(ResHR, gate.ActionUpdate, api.UpdateEmployee))
	mux.Handle("DELETE /api/employees/{id}", can(ResHR, gate.ActionDelete, api.DeleteEmployee))
	mux.Handle("POST /api/employees/{id}/salary", can(ResHR, gate.ActionManage, api.PaySalary))
	mux.Handle("GET /api/recurring", can(ResHR, gate.ActionList, api.ListRecurring))
	mux.Handle("POST /api/recurring", can(ResHR, gate.ActionCreate, api.CreateRecurring))
	mux.Handle("DELETE /api/recurring/{id}", can(ResHR, gate.ActionDelete, api.DeleteRecurring))
	mux.Handle("POST /api/recurring/{id}/process", can(ResHR, gate.ActionManage, api.ProcessRecurring))

	mux.Handle("GET /api/users", can(ResUser, gate.ActionList, api.ListUsers))
	mux.Handle("POST /api/users", can(ResUser, gate.ActionCreate, api.CreateUser))
	mux.Handle("PUT /api/users/{id}", can(ResUser, gate.ActionUpdate, api.UpdateUser))
	mux.Handle("DELETE /api/users/{id}", can(ResUser, gate.ActionDelete, api.DeleteUser))

	mux.Handle("GET /api/settings", authed(api.GetSettings))
	mux.Handle("PATCH /api/settings", can(ResSettings, gate.ActionUpdate, api.PatchSettings))
	mux.Handle("GET /api/contract-options", authed(api.GetContractOptions))
	mux.Handle("PUT /api/contract-options", can(ResSettings, gate.ActionUpdate, api.PutContractOptions))
	mux.Handle("GET /api/theme", authed(api.GetTheme))
	mux.Handle("PUT /api/theme", authed(api.PutTheme))

	mux.Handle("GET /api/sync", authed(api.SyncStatus))
	mux.Handle("POST /api/sync", admin(api.RunSync))
	mux.Handle("POST /api/reset", admin(api.FactoryReset))
}
