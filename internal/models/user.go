package models

// Capability keys of a user's permission map.
const (
	PermViewDashboard     = "canViewDashboard"
	PermManageUsers       = "canManageUsers"
	PermManagePurchases   = "canManagePurchases"
	PermManageInventory   = "canManageInventory"
	PermManageCustomers   = "canManageCustomers"
	PermManageFinance     = "canManageFinance"
	PermManageHR          = "canManageHR"
	PermManageInvoices    = "canManageInvoices"
	PermManageDeliveries  = "canManageDeliveries"
	PermManageInspections = "canManageInspections"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	UserActive = "active"
)

// DefaultPermissions is the capability map of a new non-admin user.
func DefaultPermissions() map[string]bool {
	return map[string]bool{
		PermViewDashboard:    false,
		PermManageUsers:      false,
		PermManagePurchases:  false,
		PermManageInventory:  false,
		PermManageCustomers:  false,
		PermManageFinance:    false,
		PermManageHR:         false,
		PermManageInvoices:   false,
		PermManageDeliveries: false,
	}
}

// AdminPermissions is the full capability set.
func AdminPermissions() map[string]bool {
	return map[string]bool{
		PermViewDashboard:     true,
		PermManageUsers:       true,
		PermManagePurchases:   true,
		PermManageInventory:   true,
		PermManageCustomers:   true,
		PermManageFinance:     true,
		PermManageHR:          true,
		PermManageInvoices:    true,
		PermManageDeliveries:  true,
		PermManageInspections: true,
	}
}

// User is an operator of the application.
type User struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Username    string          `json:"username"`
	Email       string          `json:"email,omitempty"`
	Password    string          `json:"password"`
	Role        string          `json:"role"`
	Status      string          `json:"status,omitempty"`
	Permissions map[string]bool `json:"permissions"`
}

func (u User) GetID() string { return u.ID }

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Can reports whether the capability is granted.
func (u User) Can(capability string) bool {
	return u.Permissions[capability]
}

// Public returns a copy without the password.
func (u User) Public() User {
	u.Password = ""
	return u
}

// SamePermissions reports whether two capability maps grant the same set.
func SamePermissions(a, b map[string]bool) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if a[k] != v {
			return false
		}
	}
	return true
}
