package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

// Consumption draws material from stock for production.
type Consumption struct {
	ItemName string  `json:"itemName"`
	Quantity float64 `json:"quantity"`
	Notes    string  `json:"notes"`
}

func (s *Store) Inventory() []models.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.inventory)
}

// LowStock lists items at or under their reorder threshold.
func (s *Store) LowStock() []models.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.InventoryItem
	for _, it := range s.inventory {
		if it.IsLow() {
			out = append(out, it)
		}
	}
	return out
}

// Movements returns the inventory audit trail, newest first.
func (s *Store) Movements() []models.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.movements)
}

// AddInventoryItem registers an item with its opening stock and records an
// ADJUST movement for it.
func (s *Store) AddInventoryItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	v := validation.Violations{}
	validation.Required("name", item.Name, v)
	validation.NonNegativeFloat("stock", item.Stock, v)
	if err := invalid(v); err != nil {
		return models.InventoryItem{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		item.ID = s.newID()
		s.inventory = append(s.inventory, item)
		c.insert(Inventory, item)
		s.addMovement(c, models.InventoryMovement{
			ItemID:   item.ID,
			ItemName: item.Name,
			Type:     models.MovementAdjust,
			Quantity: item.Stock,
			Reason:   "رصيد افتتاحي",
		})
		return nil
	})
	return item, err
}

// UpdateInventoryItem replaces the item with the same id.
func (s *Store) UpdateInventoryItem(ctx context.Context, item models.InventoryItem) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.inventory, item.ID)
		if i < 0 {
			return nil
		}
		item.Stock = max(0, item.Stock)
		s.inventory[i] = item
		c.update(Inventory, item.ID, item)
		return nil
	})
}

func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.inventory, id)
		if i < 0 {
			return nil
		}
		s.inventory = without(s.inventory, i)
		c.remove(Inventory, id)
		return nil
	})
}

// ConsumeMaterial deducts stock, clamped at zero, and records an OUT
// movement valued at the item's last purchase price. No transaction is
// booked. An unknown item is a no-op and returns a zero movement.
func (s *Store) ConsumeMaterial(ctx context.Context, in Consumption) (models.InventoryMovement, error) {
	v := validation.Violations{}
	validation.PositiveFloat("quantity", in.Quantity, v)
	if err := invalid(v); err != nil {
		return models.InventoryMovement{}, err
	}
	var out models.InventoryMovement
	err := s.apply(ctx, func(c *change) error {
		i := indexWhere(s.inventory, func(it models.InventoryItem) bool { return it.Name == in.ItemName })
		if i < 0 {
			return nil
		}
		item := s.inventory[i]
		s.inventory[i].Stock = max(0, addMoney(item.Stock, -in.Quantity))
		c.update(Inventory, item.ID, s.inventory[i])
		out = s.addMovement(c, models.InventoryMovement{
			ItemID:   item.ID,
			ItemName: item.Name,
			Type:     models.MovementOut,
			Quantity: in.Quantity,
			Reason:   orDefault(in.Notes, "سحب تشغيل"),
			Value:    decimal.NewFromFloat(in.Quantity).Mul(decimal.NewFromFloat(item.LastPrice)).InexactFloat64(),
		})
		return nil
	})
	return out, err
}

func (s *Store) addMovement(c *change, m models.InventoryMovement) models.InventoryMovement {
	m.ID = s.newID()
	if m.Date == "" {
		m.Date = s.timestamp()
	}
	s.movements = append([]models.InventoryMovement{m}, s.movements...)
	c.insert(InventoryMovements, m)
	return m
}

// ServiceItems is the local catalogue of billable services.
func (s *Store) ServiceItems() []models.ServiceItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.serviceItems)
}

func (s *Store) AddServiceItem(ctx context.Context, item models.ServiceItem) (models.ServiceItem, error) {
	v := validation.Violations{}
	validation.Required("name", item.Name, v)
	validation.NonNegativeFloat("defaultPrice", item.DefaultPrice, v)
	if err := invalid(v); err != nil {
		return models.ServiceItem{}, err
	}
	err := s.apply(ctx, func(c *change) error {
		item.ID = s.newID()
		s.serviceItems = append(s.serviceItems, item)
		c.touch(ServiceItems)
		return nil
	})
	return item, err
}

func (s *Store) DeleteServiceItem(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		if i := indexByID(s.serviceItems, id); i >= 0 {
			s.serviceItems = without(s.serviceItems, i)
			c.touch(ServiceItems)
		}
		return nil
	})
}

// PriceFor returns the catalogue price used to prefill a service line.
func (s *Store) PriceFor(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexWhere(s.serviceItems, func(it models.ServiceItem) bool { return it.Name == name }); i >= 0 {
		return s.serviceItems[i].DefaultPrice, true
	}
	return 0, false
}
