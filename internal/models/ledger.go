package models

import "strings"

// TransactionType is the sign of a transaction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Account is a named cash pool. Its balance is the signed sum of the
// transactions whose Account field equals Name.
type Account struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

func (a Account) GetID() string { return a.ID }

// Transaction is the atomic financial event. Account and CustomerName are name
// references; AccountID, CustomerID and PurchaseID are filled when the caller
// knows the exact record and are preferred over name matching.
type Transaction struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	Date         string          `json:"date"`
	Account      string          `json:"account"`
	Category     string          `json:"category"`
	Notes        string          `json:"notes"`
	CustomerName string          `json:"customerName,omitempty"`
	AccountID    string          `json:"accountId,omitempty"`
	CustomerID   string          `json:"customerId,omitempty"`
	PurchaseID   string          `json:"purchaseId,omitempty"`
}

func (t Transaction) GetID() string { return t.ID }

// IsIncome reports whether the transaction adds to balances.
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionIncome
}

// Signed returns the amount with the sign its type implies.
func (t Transaction) Signed() float64 {
	if t.IsIncome() {
		return t.Amount
	}
	return -t.Amount
}

// CustomerRef is the customer name a transaction is charged to: CustomerName
// when set, otherwise the account name.
func (t Transaction) CustomerRef() string {
	if t.CustomerName != "" {
		return t.CustomerName
	}
	return t.Account
}

// References reports whether the transaction belongs to the named account,
// ignoring surrounding whitespace.
func (t Transaction) References(accountName string) bool {
	return strings.TrimSpace(t.Account) == strings.TrimSpace(accountName)
}
