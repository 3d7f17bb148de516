package store

import (
	"context"
	"fmt"

	"github.com/diewo77/kinz/internal/cache"
	"github.com/diewo77/kinz/internal/remote"
)

// FactoryReset wipes every remote table and every kinz_ cache key, then
// reloads the defaults. It cannot be undone; callers confirm first.
func (s *Store) FactoryReset(ctx context.Context) error {
	const op = "factory reset"

	if s.mirror != nil {
		for _, table := range remote.Tables {
			if err := s.mirror.DeleteAll(ctx, table); err != nil {
				s.log.Error().Err(err).Str("table", table).Msg("remote wipe failed")
			}
		}
	}

	s.mu.Lock()
	n, err := s.cache.ClearPrefix(cache.Prefix)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.load()
	s.mu.Unlock()

	s.log.Warn().Int64("keys", n).Msg("factory reset complete")
	s.emit(allCollections, false)
	return nil
}

var allCollections = []Collection{
	Customers, Purchases, Inventory, InventoryMovements, Inspections, Invoices,
	Users, Settings, Transactions, Accounts, Employees, Recurring, ContractOptions,
	ServiceItems, CurrentUser, Theme,
}
