package policy

import (
	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/internal/models"
)

// Resource types checked by the gate.
const (
	ResDashboard  = "dashboard"
	ResUser       = "user"
	ResSettings   = "settings"
	ResPurchase   = "purchase"
	ResInventory  = "inventory"
	ResCustomer   = "customer"
	ResFinance    = "finance"
	ResHR         = "hr"
	ResInvoice    = "invoice"
	ResDelivery   = "delivery"
	ResInspection = "inspection"
)

// capabilityGrants maps a capability flag of models.User to the gate
// permissions it grants.
var capabilityGrants = map[string][]gate.Permission{
	models.PermViewDashboard:     {all(ResDashboard)},
	models.PermManageUsers:       {all(ResUser), all(ResSettings)},
	models.PermManagePurchases:   {all(ResPurchase)},
	models.PermManageInventory:   {all(ResInventory)},
	models.PermManageCustomers:   {all(ResCustomer)},
	models.PermManageFinance:     {all(ResFinance)},
	models.PermManageHR:          {all(ResHR)},
	models.PermManageInvoices:    {all(ResInvoice)},
	models.PermManageDeliveries:  {all(ResDelivery)},
	models.PermManageInspections: {all(ResInspection)},
}

func all(resource string) gate.Permission {
	return gate.NewPermission(resource, gate.WildcardAll)
}

// ProfileFor builds the gate profile of u from its capability map. The
// profile is named after the role; admins get no implicit grants beyond
// their map.
func ProfileFor(u models.User) *gate.StaticProfile {
	var perms []gate.Permission
	for capability, granted := range u.Permissions {
		if granted {
			perms = append(perms, capabilityGrants[capability]...)
		}
	}
	return gate.NewStaticProfile(u.Role, perms...)
}
