package store

import (
	"fmt"

	"github.com/diewo77/kinz/internal/remote"
)

// Records returns a synchronized collection as generic records with local
// field names. Singleton tables yield one record.
func (s *Store) Records(table string) ([]remote.Record, error) {
	if err := remote.CheckTable(table); err != nil {
		return nil, err
	}
	s.mu.Lock()
	v := s.value(Collection(table))
	s.mu.Unlock()

	if remote.IsSingleton(table) {
		r, err := remote.ToRecord(v)
		if err != nil {
			return nil, err
		}
		return []remote.Record{r}, nil
	}
	r, err := remote.ToRecord(map[string]any{"rows": v})
	if err != nil {
		return nil, err
	}
	rows, _ := r["rows"].([]any)
	out := make([]remote.Record, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]any); ok {
			out = append(out, remote.Record(m))
		}
	}
	return out, nil
}

// ReplaceCollection overwrites a synchronized collection with a remote
// snapshot, whole. Singleton tables take the first record; an empty
// snapshot leaves a singleton untouched. Records that do not decode leave
// the collection as it was.
func (s *Store) ReplaceCollection(table string, records []remote.Record) error {
	if err := remote.CheckTable(table); err != nil {
		return err
	}
	col := Collection(table)
	dirty := []Collection{col}

	s.mu.Lock()
	err := s.replace(col, records)
	if err == nil && col == Users && s.refreshCurrentUser() {
		dirty = append(dirty, CurrentUser)
	}
	if err == nil {
		s.persist(dirty)
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}
	s.emit(dirty, true)
	return nil
}

func (s *Store) replace(col Collection, records []remote.Record) error {
	switch col {
	case Customers:
		return decodeInto(&s.customers, records)
	case Purchases:
		return decodeInto(&s.purchases, records)
	case Inventory:
		return decodeInto(&s.inventory, records)
	case InventoryMovements:
		return decodeInto(&s.movements, records)
	case Inspections:
		return decodeInto(&s.inspections, records)
	case Invoices:
		return decodeInto(&s.invoices, records)
	case Users:
		return decodeInto(&s.users, records)
	case Transactions:
		return decodeInto(&s.transactions, records)
	case Accounts:
		return decodeInto(&s.accounts, records)
	case Employees:
		return decodeInto(&s.employees, records)
	case Recurring:
		return decodeInto(&s.recurring, records)
	case Settings:
		return decodeFirst(&s.settings, records)
	case ContractOptions:
		return decodeFirst(&s.contractOptions, records)
	}
	return nil
}

func decodeInto[T any](dst *[]T, records []remote.Record) error {
	v, err := remote.Decode[T](records)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func decodeFirst[T any](dst *T, records []remote.Record) error {
	if len(records) == 0 {
		return nil
	}
	v, err := remote.Decode[T](records[:1])
	if err != nil {
		return err
	}
	*dst = v[0]
	return nil
}
