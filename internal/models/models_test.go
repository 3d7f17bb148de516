package models

import (
	"encoding/json"
	"testing"
)

func TestTransaction_Signed(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want float64
	}{
		{"income", Transaction{Type: TransactionIncome, Amount: 100}, 100},
		{"expense", Transaction{Type: TransactionExpense, Amount: 30}, -30},
		{"unknown type counts as expense", Transaction{Type: "refund", Amount: 5}, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.Signed(); got != tt.want {
				t.Errorf("Signed() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTransaction_CustomerRef(t *testing.T) {
	tx := Transaction{Account: "Ali"}
	if got := tx.CustomerRef(); got != "Ali" {
		t.Errorf("CustomerRef() = %q, want Ali", got)
	}
	tx.CustomerName = "Sara"
	if got := tx.CustomerRef(); got != "Sara" {
		t.Errorf("CustomerRef() = %q, want Sara", got)
	}
}

func TestTransaction_ReferencesTrimsNames(t *testing.T) {
	tx := Transaction{Account: " Main "}
	if !tx.References("Main") {
		t.Error("expected trimmed names to match")
	}
	if tx.References("Main2") {
		t.Error("unexpected match")
	}
}

func TestInvoiceNumber(t *testing.T) {
	tests := []struct {
		typ  InvoiceType
		seq  int
		want string
	}{
		{InvoiceInspection, 1, "INS-2025-001"},
		{InvoiceContract, 2, "CON-2025-002"},
		{InvoiceMaterial, 12, "MAT-2025-012"},
		{InvoicePayment, 1000, "PAY-2025-1000"},
		{"quote", 3, "INV-2025-003"},
	}
	for _, tt := range tests {
		if got := InvoiceNumber(tt.typ, 2025, tt.seq); got != tt.want {
			t.Errorf("InvoiceNumber(%s, %d) = %q, want %q", tt.typ, tt.seq, got, tt.want)
		}
	}
}

func TestInvoice_Total(t *testing.T) {
	inv := Invoice{Amount: 50}
	if got := inv.Total(); got != 50 {
		t.Errorf("Total() = %f, want 50", got)
	}
	inv.Items = []InvoiceLine{{Quantity: 2, UnitPrice: 10}, {Quantity: 1, UnitPrice: 5}}
	if got := inv.Total(); got != 25 {
		t.Errorf("Total() = %f, want 25", got)
	}
}

func TestCustomerStatus(t *testing.T) {
	tests := []struct {
		status  CustomerStatus
		valid   bool
		confirm bool
	}{
		{CustomerDesign, true, false},
		{CustomerProduction, true, false},
		{CustomerDelivery, true, true},
		{CustomerDelivered, true, true},
		{CustomerCancelled, true, false},
		{"archived", false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.status.RequiresConfirmation(); got != tt.confirm {
				t.Errorf("RequiresConfirmation() = %v, want %v", got, tt.confirm)
			}
		})
	}
}

func TestNumber_DecodesStrings(t *testing.T) {
	tests := []struct {
		in   string
		want Number
	}{
		{`1000`, 1000},
		{`"1500.5"`, 1500.5},
		{`""`, 0},
		{`"abc"`, 0},
	}
	for _, tt := range tests {
		var c struct {
			Cost Number `json:"cost"`
		}
		if err := json.Unmarshal([]byte(`{"cost":`+tt.in+`}`), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if c.Cost != tt.want {
			t.Errorf("decode %s = %v, want %v", tt.in, c.Cost, tt.want)
		}
	}
}

func TestAdminPermissionsSuperset(t *testing.T) {
	admin := AdminPermissions()
	for k := range DefaultPermissions() {
		if !admin[k] {
			t.Errorf("admin permissions missing %s", k)
		}
	}
	if !admin[PermManageInspections] {
		t.Error("admin permissions missing inspections")
	}
}

func TestSamePermissions(t *testing.T) {
	a := map[string]bool{"x": true, "y": false}
	b := map[string]bool{"x": true}
	if !SamePermissions(a, b) {
		t.Error("false entries should not count as a difference")
	}
	b["z"] = true
	if SamePermissions(a, b) {
		t.Error("expected difference")
	}
}

func TestInventoryItem_IsLow(t *testing.T) {
	if !(InventoryItem{Stock: 5, MinStock: 5}).IsLow() {
		t.Error("stock at threshold should be low")
	}
	if (InventoryItem{Stock: 6, MinStock: 5}).IsLow() {
		t.Error("stock above threshold should not be low")
	}
}
