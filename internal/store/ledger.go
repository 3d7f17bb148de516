package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kinz/internal/models"
)

// Balances follow the transactions by name: a transaction moves every
// account whose name equals tx.Account and every customer whose name equals
// tx.CustomerRef(). The id fields are recorded for linkage only.

func addMoney(balance, delta float64) float64 {
	return decimal.NewFromFloat(balance).Add(decimal.NewFromFloat(delta)).InexactFloat64()
}

// Transactions returns a copy of the ledger, newest first.
func (s *Store) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.transactions)
}

// Transaction looks up one transaction by id.
func (s *Store) Transaction(id string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.transactions, id); i >= 0 {
		return s.transactions[i], nil
	}
	return models.Transaction{}, ErrNotFound
}

// AddTransaction records tx and moves the matching account and customer
// balances by its signed amount. Id and date are filled when empty.
func (s *Store) AddTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	var out models.Transaction
	err := s.apply(ctx, func(c *change) error {
		out = s.addTransaction(c, tx)
		return nil
	})
	return out, err
}

// UpdateTransaction replaces the stored transaction with the same id,
// reversing the old effect and applying the new one. Unknown ids are ignored.
func (s *Store) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	return s.apply(ctx, func(c *change) error {
		s.updateTransaction(c, tx)
		return nil
	})
}

// DeleteTransaction reverses the transaction's effect and removes it.
// Unknown ids are ignored.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		s.deleteTransaction(c, id)
		return nil
	})
}

// RecalculateAccountBalances rebuilds every account balance from the
// ledger, rounded to two decimals. Customer balances are left alone.
func (s *Store) RecalculateAccountBalances(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	err := s.apply(ctx, func(c *change) error {
		for i, acc := range s.accounts {
			sum := decimal.Zero
			for _, tx := range s.transactions {
				if tx.References(acc.Name) {
					sum = sum.Add(decimal.NewFromFloat(tx.Signed()))
				}
			}
			s.accounts[i].Balance = sum.Round(2).InexactFloat64()
			c.update(Accounts, acc.ID, balancePatch(s.accounts[i].Balance))
		}
		c.touch(Accounts)
		out = clone(s.accounts)
		return nil
	})
	return out, err
}

func (s *Store) addTransaction(c *change, tx models.Transaction) models.Transaction {
	if tx.ID == "" {
		tx.ID = s.newID()
	}
	if tx.Date == "" {
		tx.Date = s.timestamp()
	}
	s.resolveRefs(&tx)
	s.transactions = append([]models.Transaction{tx}, s.transactions...)
	c.insert(Transactions, tx)
	s.moveBalances(c, tx, tx.Signed())
	return tx
}

func (s *Store) updateTransaction(c *change, tx models.Transaction) {
	i := indexByID(s.transactions, tx.ID)
	if i < 0 {
		return
	}
	old := s.transactions[i]
	if tx.Date == "" {
		tx.Date = old.Date
	}
	if tx.PurchaseID == "" {
		tx.PurchaseID = old.PurchaseID
	}
	if tx.Account != old.Account {
		tx.AccountID = ""
	}
	if tx.CustomerRef() != old.CustomerRef() {
		tx.CustomerID = ""
	}
	s.resolveRefs(&tx)

	for j, acc := range s.accounts {
		bal := acc.Balance
		if acc.Name == old.Account {
			bal = addMoney(bal, -old.Signed())
		}
		if acc.Name == tx.Account {
			bal = addMoney(bal, tx.Signed())
		}
		if bal != acc.Balance {
			s.accounts[j].Balance = bal
			c.update(Accounts, acc.ID, balancePatch(bal))
		}
	}
	oldRef, newRef := old.CustomerRef(), tx.CustomerRef()
	for j, cust := range s.customers {
		bal := cust.Balance
		if cust.Name == oldRef {
			bal = addMoney(bal, -old.Signed())
		}
		if cust.Name == newRef {
			bal = addMoney(bal, tx.Signed())
		}
		if bal != cust.Balance {
			s.customers[j].Balance = bal
			c.update(Customers, cust.ID, balancePatch(bal))
		}
	}

	s.transactions[i] = tx
	c.update(Transactions, tx.ID, tx)
}

func (s *Store) deleteTransaction(c *change, id string) {
	i := indexByID(s.transactions, id)
	if i < 0 {
		return
	}
	tx := s.transactions[i]
	s.moveBalances(c, tx, -tx.Signed())
	s.transactions = without(s.transactions, i)
	c.remove(Transactions, id)
}

// moveBalances adds delta to every account and customer tx refers to.
func (s *Store) moveBalances(c *change, tx models.Transaction, delta float64) {
	for j, acc := range s.accounts {
		if acc.Name == tx.Account {
			s.accounts[j].Balance = addMoney(acc.Balance, delta)
			c.update(Accounts, acc.ID, balancePatch(s.accounts[j].Balance))
		}
	}
	ref := tx.CustomerRef()
	for j, cust := range s.customers {
		if cust.Name == ref {
			s.customers[j].Balance = addMoney(cust.Balance, delta)
			c.update(Customers, cust.ID, balancePatch(s.customers[j].Balance))
		}
	}
}

// resolveRefs fills the id links from the first record matching by name.
func (s *Store) resolveRefs(tx *models.Transaction) {
	if tx.AccountID == "" && tx.Account != "" {
		if i := indexWhere(s.accounts, func(a models.Account) bool { return a.Name == tx.Account }); i >= 0 {
			tx.AccountID = s.accounts[i].ID
		}
	}
	if ref := tx.CustomerRef(); tx.CustomerID == "" && ref != "" {
		if i := indexWhere(s.customers, func(cu models.Customer) bool { return cu.Name == ref }); i >= 0 {
			tx.CustomerID = s.customers[i].ID
		}
	}
}

// purchaseTransaction finds the expense booked for p: by PurchaseID first,
// then by the notes it was created with plus the charged name.
func (s *Store) purchaseTransaction(p models.Purchase) int {
	if i := indexWhere(s.transactions, func(t models.Transaction) bool { return p.ID != "" && t.PurchaseID == p.ID }); i >= 0 {
		return i
	}
	notes := purchaseNotes(p.MaterialName)
	return indexWhere(s.transactions, func(t models.Transaction) bool {
		return t.PurchaseID == "" && t.Notes == notes &&
			(t.Account == p.Account || (p.CustomerName != "" && t.Account == p.CustomerName))
	})
}

func purchaseNotes(material string) string {
	return "شراء " + material
}

func balancePatch(balance float64) map[string]any {
	return map[string]any{"balance": balance}
}
