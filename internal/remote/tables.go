package remote

import (
	"errors"
	"fmt"
)

// ErrUnknownTable is returned for a table name outside the synchronized set.
var ErrUnknownTable = errors.New("unknown table")

// Synchronized tables in startup sync order.
const (
	TableCustomers          = "customers"
	TablePurchases          = "purchases"
	TableInventory          = "inventory"
	TableInventoryMovements = "inventory_movements"
	TableInspections        = "inspections"
	TableInvoices           = "invoices"
	TableUsers              = "users"
	TableSettings           = "settings"
	TableTransactions       = "transactions"
	TableAccounts           = "accounts"
	TableEmployees          = "employees"
	TableRecurring          = "recurring"
	TableContractOptions    = "contract_options"
)

// Tables lists every synchronized table in the order the sync controller
// visits them.
var Tables = []string{
	TableCustomers,
	TablePurchases,
	TableInventory,
	TableInventoryMovements,
	TableInspections,
	TableInvoices,
	TableUsers,
	TableSettings,
	TableTransactions,
	TableAccounts,
	TableEmployees,
	TableRecurring,
	TableContractOptions,
}

// IsSingleton reports whether the table holds one row keyed by a fixed id.
func IsSingleton(table string) bool {
	return table == TableSettings || table == TableContractOptions
}

// IsTable reports whether table is one of the synchronized tables.
func IsTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}

// CheckTable returns ErrUnknownTable for names outside Tables. Table names
// are interpolated into SQL, so every backend calls this first.
func CheckTable(table string) error {
	if IsTable(table) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownTable, table)
}
