package store

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

const (
	categoryAdjustment         = "تسوية رصيد"
	categoryCustomerAdjustment = "تسوية رصيد عميل"
)

func (s *Store) Accounts() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.accounts)
}

// AddAccount creates a cash pool. An opening balance is stored as given,
// without a transaction.
func (s *Store) AddAccount(ctx context.Context, acc models.Account) (models.Account, error) {
	v := validation.Violations{}
	validation.Required("name", acc.Name, v)
	if err := invalid(v); err != nil {
		return models.Account{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		acc.ID = s.newID()
		s.accounts = append(s.accounts, acc)
		c.insert(Accounts, acc)
		return nil
	})
	return acc, err
}

// UpdateAccount replaces the account with the same id. Renaming does not
// rewrite transactions that reference the old name.
func (s *Store) UpdateAccount(ctx context.Context, acc models.Account) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.accounts, acc.ID)
		if i < 0 {
			return nil
		}
		s.accounts[i] = acc
		c.update(Accounts, acc.ID, acc)
		return nil
	})
}

// DeleteAccount removes the account. Its transactions are kept.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.accounts, id)
		if i < 0 {
			return nil
		}
		s.accounts = without(s.accounts, i)
		c.remove(Accounts, id)
		return nil
	})
}

// AdjustAccountBalance books the difference between the current and the
// wanted balance as an adjustment transaction.
func (s *Store) AdjustAccountBalance(ctx context.Context, accountID string, balance float64, reason string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.accounts, accountID)
		if i < 0 {
			return nil
		}
		acc := s.accounts[i]
		s.adjust(c, acc.Name, acc.Balance, balance, categoryAdjustment, reason)
		return nil
	})
}

// AdjustCustomerBalance does the same for a customer's running balance,
// booked against the customer's name.
func (s *Store) AdjustCustomerBalance(ctx context.Context, customerID string, balance float64, reason string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.customers, customerID)
		if i < 0 {
			return nil
		}
		cust := s.customers[i]
		s.adjust(c, cust.Name, cust.Balance, balance, categoryCustomerAdjustment, reason)
		return nil
	})
}

func (s *Store) adjust(c *change, name string, current, wanted float64, category, reason string) {
	diff := decimal.NewFromFloat(wanted).Sub(decimal.NewFromFloat(current)).InexactFloat64()
	if diff == 0 {
		return
	}
	typ := models.TransactionIncome
	if diff < 0 {
		typ = models.TransactionExpense
	}
	s.addTransaction(c, models.Transaction{
		Type:     typ,
		Amount:   math.Abs(diff),
		Category: category,
		Account:  name,
		Notes:    "تسوية يدوية: " + reason,
	})
}

// ResetAllAccounts sets every account balance to zero without booking
// anything. The ledger is left as is.
func (s *Store) ResetAllAccounts(ctx context.Context) error {
	return s.apply(ctx, func(c *change) error {
		for i, acc := range s.accounts {
			s.accounts[i].Balance = 0
			c.update(Accounts, acc.ID, balancePatch(0))
		}
		c.touch(Accounts)
		return nil
	})
}
