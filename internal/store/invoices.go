package store

import (
	"context"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

func (s *Store) Invoices() []models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.invoices)
}

func (s *Store) Invoice(id string) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.invoices, id); i >= 0 {
		return s.invoices[i], nil
	}
	return models.Invoice{}, ErrNotFound
}

// AddInvoice numbers the invoice <PREFIX>-<year>-<seq>, where seq is one
// more than the number of invoices of the same type. Deleted invoices are
// not reclaimed, so numbers may repeat after a delete.
func (s *Store) AddInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	v := validation.Violations{}
	validation.Required("type", string(inv.Type), v)
	if err := invalid(v); err != nil {
		return models.Invoice{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		seq := 1
		for _, other := range s.invoices {
			if other.Type == inv.Type {
				seq++
			}
		}
		inv.ID = s.newID()
		inv.Number = models.InvoiceNumber(inv.Type, s.now().Year(), seq)
		if inv.Date == "" {
			inv.Date = s.timestamp()
		}
		if inv.Status == "" {
			inv.Status = models.InvoiceStatusDraft
		}
		s.invoices = append([]models.Invoice{inv}, s.invoices...)
		c.insert(Invoices, inv)
		return nil
	})
	return inv, err
}

func (s *Store) UpdateInvoice(ctx context.Context, inv models.Invoice) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.invoices, inv.ID)
		if i < 0 {
			return nil
		}
		s.invoices[i] = inv
		c.update(Invoices, inv.ID, inv)
		return nil
	})
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.invoices, id)
		if i < 0 {
			return nil
		}
		s.invoices[i].Status = status
		c.update(Invoices, id, s.invoices[i])
		return nil
	})
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.invoices, id)
		if i < 0 {
			return nil
		}
		s.invoices = without(s.invoices, i)
		c.remove(Invoices, id)
		return nil
	})
}
