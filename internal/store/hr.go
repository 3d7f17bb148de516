package store

import (
	"context"
	"fmt"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

const categorySalaries = "رواتب"

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

func (s *Store) Employees() []models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.employees)
}

func (s *Store) AddEmployee(ctx context.Context, emp models.Employee) (models.Employee, error) {
	v := validation.Violations{}
	validation.Required("name", emp.Name, v)
	validation.NonNegativeFloat("salary", emp.Salary, v)
	if err := invalid(v); err != nil {
		return models.Employee{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		emp.ID = s.newID()
		s.employees = append(s.employees, emp)
		c.insert(Employees, emp)
		return nil
	})
	return emp, err
}

func (s *Store) UpdateEmployee(ctx context.Context, emp models.Employee) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.employees, emp.ID)
		if i < 0 {
			return nil
		}
		s.employees[i] = emp
		c.update(Employees, emp.ID, emp)
		return nil
	})
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.employees, id)
		if i < 0 {
			return nil
		}
		s.employees = without(s.employees, i)
		c.remove(Employees, id)
		return nil
	})
}

// PaySalary books the salary expense for the current month against the
// paying account.
func (s *Store) PaySalary(ctx context.Context, employeeID string, amount float64, account string) (models.Transaction, error) {
	v := validation.Violations{}
	validation.PositiveFloat("amount", amount, v)
	validation.Required("account", account, v)
	if err := invalid(v); err != nil {
		return models.Transaction{}, err
	}
	var out models.Transaction
	err := s.apply(ctx, func(c *change) error {
		i := indexByID(s.employees, employeeID)
		if i < 0 {
			return nil
		}
		month := arabicMonths[s.now().Month()-1]
		out = s.addTransaction(c, models.Transaction{
			Type:     models.TransactionExpense,
			Amount:   amount,
			Category: categorySalaries,
			Account:  account,
			Notes:    fmt.Sprintf("راتب شهر %s للموظف %s", month, s.employees[i].Name),
		})
		return nil
	})
	return out, err
}

func (s *Store) RecurringExpenses() []models.RecurringExpense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.recurring)
}

func (s *Store) AddRecurring(ctx context.Context, r models.RecurringExpense) (models.RecurringExpense, error) {
	v := validation.Violations{}
	validation.Required("label", r.Label, v)
	validation.PositiveFloat("amount", r.Amount, v)
	if r.DayOfMonth != 0 {
		validation.RangeInt("dayOfMonth", r.DayOfMonth, 1, 31, v)
	}
	if err := invalid(v); err != nil {
		return models.RecurringExpense{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		r.ID = s.newID()
		s.recurring = append(s.recurring, r)
		c.insert(Recurring, r)
		return nil
	})
	return r, err
}

func (s *Store) DeleteRecurring(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.recurring, id)
		if i < 0 {
			return nil
		}
		s.recurring = without(s.recurring, i)
		c.remove(Recurring, id)
		return nil
	})
}

// ProcessRecurring pays one occurrence of the recurring expense.
func (s *Store) ProcessRecurring(ctx context.Context, id string) (models.Transaction, error) {
	var out models.Transaction
	err := s.apply(ctx, func(c *change) error {
		i := indexByID(s.recurring, id)
		if i < 0 {
			return nil
		}
		r := s.recurring[i]
		out = s.addTransaction(c, models.Transaction{
			Type:     models.TransactionExpense,
			Amount:   r.Amount,
			Category: r.Category,
			Account:  r.Account,
			Notes:    "دفع دوري: " + r.Label,
		})
		return nil
	})
	return out, err
}
