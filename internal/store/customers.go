package store

import (
	"context"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

// Payment is money received from a customer.
type Payment struct {
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Category   string  `json:"category"`
}

func (s *Store) Customers() []models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.customers)
}

func (s *Store) Customer(id string) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.customers, id); i >= 0 {
		return s.customers[i], nil
	}
	return models.Customer{}, ErrNotFound
}

// AddCustomer registers a project. Project type defaults to kitchen and
// status to design.
func (s *Store) AddCustomer(ctx context.Context, cust models.Customer) (models.Customer, error) {
	v := validation.Violations{}
	validation.Required("name", cust.Name, v)
	if cust.Status != "" && !cust.Status.Valid() {
		v["status"] = "invalid_choice"
	}
	if err := invalid(v); err != nil {
		return models.Customer{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		cust.ID = s.newID()
		if cust.ProjectType == "" {
			cust.ProjectType = "kitchen"
		}
		if cust.Status == "" {
			cust.Status = models.CustomerDesign
		}
		if cust.CreatedAt == "" {
			cust.CreatedAt = s.timestamp()
		}
		s.customers = append(s.customers, cust)
		c.insert(Customers, cust)
		return nil
	})
	return cust, err
}

// UpdateCustomer replaces the customer with the same id. The balance is
// taken as given; use AdjustCustomerBalance to book a correction.
func (s *Store) UpdateCustomer(ctx context.Context, cust models.Customer) error {
	if cust.Status != "" && !cust.Status.Valid() {
		return invalid(validation.Violations{"status": "invalid_choice"})
	}
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.customers, cust.ID)
		if i < 0 {
			return nil
		}
		s.customers[i] = cust
		c.update(Customers, cust.ID, cust)
		return nil
	})
}

// DeleteCustomer removes the customer. Its transactions are kept.
func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.customers, id)
		if i < 0 {
			return nil
		}
		s.customers = without(s.customers, i)
		c.remove(Customers, id)
		return nil
	})
}

// SetCustomerStatus moves the project to any stage. Callers confirm
// stages whose RequiresConfirmation is true before calling.
func (s *Store) SetCustomerStatus(ctx context.Context, id string, status models.CustomerStatus) error {
	if !status.Valid() {
		return invalid(validation.Violations{"status": "invalid_choice"})
	}
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.customers, id)
		if i < 0 {
			return nil
		}
		s.customers[i].Status = status
		c.update(Customers, id, map[string]any{"status": status})
		return nil
	})
}

// RecordCustomerPayment books an income against the customer's name,
// raising the customer's balance.
func (s *Store) RecordCustomerPayment(ctx context.Context, p Payment) (models.Transaction, error) {
	v := validation.Violations{}
	validation.Required("customerId", p.CustomerID, v)
	validation.PositiveFloat("amount", p.Amount, v)
	if err := invalid(v); err != nil {
		return models.Transaction{}, err
	}
	var out models.Transaction
	err := s.apply(ctx, func(c *change) error {
		i := indexByID(s.customers, p.CustomerID)
		if i < 0 {
			return nil
		}
		cust := s.customers[i]
		out = s.addTransaction(c, models.Transaction{
			Type:         models.TransactionIncome,
			Amount:       p.Amount,
			Date:         p.Date,
			Account:      cust.Name,
			Category:     p.Category,
			Notes:        "تحصيل من العميل: " + cust.Name,
			CustomerName: cust.Name,
			CustomerID:   cust.ID,
		})
		return nil
	})
	return out, err
}

func (s *Store) Inspections() []models.Inspection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.inspections)
}

// AddInspection schedules a site visit. Date is the booking time; the
// visit defaults to now when no scheduled date is given.
func (s *Store) AddInspection(ctx context.Context, in models.Inspection) (models.Inspection, error) {
	v := validation.Violations{}
	validation.Required("customerId", in.CustomerID, v)
	if err := invalid(v); err != nil {
		return models.Inspection{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		in.ID = s.newID()
		in.Date = s.timestamp()
		if in.Status == "" {
			in.Status = models.InspectionPlanned
		}
		if in.ScheduledDate == "" {
			in.ScheduledDate = in.Date
		}
		s.inspections = append([]models.Inspection{in}, s.inspections...)
		c.insert(Inspections, in)
		return nil
	})
	return in, err
}

func (s *Store) UpdateInspection(ctx context.Context, in models.Inspection) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.inspections, in.ID)
		if i < 0 {
			return nil
		}
		s.inspections[i] = in
		c.update(Inspections, in.ID, in)
		return nil
	})
}

func (s *Store) DeleteInspection(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.inspections, id)
		if i < 0 {
			return nil
		}
		s.inspections = without(s.inspections, i)
		c.remove(Inspections, id)
		return nil
	})
}
