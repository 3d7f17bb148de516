package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

const (
	categoryMaterials = "مشتريات خامات"
	defaultUnit       = "متر مربع"
	serviceUnit       = "قطعة"
	rawMaterials      = "خامات"
	autoMinStock      = 5
)

// BulkPurchase is one supplier delivery. When TotalAmount is zero the
// total is the sum of the line totals.
type BulkPurchase struct {
	Account     string     `json:"account"`
	Supplier    string     `json:"supplier"`
	TotalAmount float64    `json:"totalAmount"`
	Items       []BulkLine `json:"items"`
}

type BulkLine struct {
	MaterialName string  `json:"materialName"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Unit         string  `json:"unit"`
}

// ServiceOrder is a batch of services or supplies bought for one customer.
type ServiceOrder struct {
	CustomerID string        `json:"customerId"`
	Supplier   string        `json:"supplier"`
	Lines      []ServiceLine `json:"lines"`
}

type ServiceLine struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Purchases returns all purchase lines, newest first.
func (s *Store) Purchases() []models.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.purchases)
}

// PurchaseGroup returns the lines sharing a serial number.
func (s *Store) PurchaseGroup(serial string) []models.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Purchase
	for _, p := range s.purchases {
		if p.SerialNumber == serial {
			out = append(out, p)
		}
	}
	return out
}

// AddPurchase records a purchase line. Unless skipped, the material's stock
// is received into inventory and an expense is charged to the customer (or
// account) the purchase is for.
//
// Steps, in order: purchase row, inventory item, IN movement, expense.
func (s *Store) AddPurchase(ctx context.Context, p models.Purchase) (models.Purchase, error) {
	v := validation.Violations{}
	validation.Required("materialName", p.MaterialName, v)
	validation.PositiveFloat("quantity", p.Quantity, v)
	validation.NonNegativeFloat("unitPrice", p.UnitPrice, v)
	if err := invalid(v); err != nil {
		return models.Purchase{}, err
	}
	var out models.Purchase
	err := s.apply(ctx, func(c *change) error {
		out = s.addPurchase(c, p)
		return nil
	})
	return out, err
}

// AddBulkPurchase receives every named line into inventory without booking them
// individually, then charges the account once for the whole delivery.
func (s *Store) AddBulkPurchase(ctx context.Context, b BulkPurchase) ([]models.Purchase, error) {
	var out []models.Purchase
	err := s.apply(ctx, func(c *change) error {
		serial := s.serialNumber()
		sum := decimal.Zero
		for _, it := range b.Items {
			if it.MaterialName == "" || it.Quantity == 0 {
				continue
			}
			sum = sum.Add(decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.UnitPrice)))
			out = append(out, s.addPurchase(c, models.Purchase{
				MaterialName:   it.MaterialName,
				Quantity:       it.Quantity,
				UnitPrice:      it.UnitPrice,
				Unit:           it.Unit,
				Supplier:       b.Supplier,
				SerialNumber:   serial,
				SkipFinancials: true,
			}))
		}
		if b.TotalAmount != 0 {
			sum = decimal.NewFromFloat(b.TotalAmount)
		}
		if b.Account != "" {
			s.addTransaction(c, models.Transaction{
				Type:     models.TransactionExpense,
				Amount:   sum.InexactFloat64(),
				Category: categoryMaterials,
				Account:  b.Account,
				Notes:    "شراء مواد من مورد: " + orDefault(b.Supplier, "غير محدد"),
			})
		}
		return nil
	})
	return out, err
}

// AddServiceOrder books services bought for a customer. Every line is kept
// out of inventory and the treasury; each line is charged to the customer
// as its own expense and all lines share one serial number.
func (s *Store) AddServiceOrder(ctx context.Context, order ServiceOrder) ([]models.Purchase, error) {
	var out []models.Purchase
	err := s.apply(ctx, func(c *change) error {
		v := validation.Violations{}
		ci := indexByID(s.customers, order.CustomerID)
		if order.CustomerID == "" || ci < 0 {
			v["customerId"] = "required"
		}
		lines := make([]ServiceLine, 0, len(order.Lines))
		for _, l := range order.Lines {
			if l.Name != "" && l.Price != 0 {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			v["lines"] = "required"
		}
		if err := invalid(v); err != nil {
			return err
		}

		cust := s.customers[ci]
		serial := s.serialNumber()
		for _, l := range lines {
			p := s.addPurchase(c, models.Purchase{
				MaterialName:   l.Name,
				Quantity:       1,
				UnitPrice:      l.Price,
				Unit:           serviceUnit,
				Total:          l.Price,
				Supplier:       order.Supplier,
				Account:        cust.Name,
				CustomerName:   cust.Name,
				CustomerID:     cust.ID,
				SerialNumber:   serial,
				SkipInventory:  true,
				SkipFinancials: true,
			})
			s.addTransaction(c, models.Transaction{
				Type:         models.TransactionExpense,
				Amount:       l.Price,
				Account:      cust.Name,
				CustomerName: cust.Name,
				CustomerID:   cust.ID,
				PurchaseID:   p.ID,
				Category:     "خدمة/توريد: " + l.Name,
				Notes:        fmt.Sprintf("توريد: %s - مورد: %s (%s)", l.Name, orDefault(order.Supplier, "بدون"), serial),
			})
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// UpdatePurchase reverses the old line's stock and reapplies the new one,
// then moves its expense to the new amount and charge target.
func (s *Store) UpdatePurchase(ctx context.Context, p models.Purchase) error {
	return s.apply(ctx, func(c *change) error {
		s.updatePurchase(c, p)
		return nil
	})
}

// DeletePurchase takes the line's quantity back out of stock (never below
// zero), deletes its expense and removes the line.
func (s *Store) DeletePurchase(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		s.deletePurchase(c, id)
		return nil
	})
}

// DeletePurchaseGroup deletes every line of an order.
func (s *Store) DeletePurchaseGroup(ctx context.Context, serial string) (int, error) {
	n := 0
	err := s.apply(ctx, func(c *change) error {
		var ids []string
		for _, p := range s.purchases {
			if p.SerialNumber == serial {
				ids = append(ids, p.ID)
			}
		}
		for _, id := range ids {
			s.deletePurchase(c, id)
		}
		n = len(ids)
		return nil
	})
	return n, err
}

func (s *Store) addPurchase(c *change, p models.Purchase) models.Purchase {
	p.ID = s.newID()
	if p.Total == 0 {
		p.Total = decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(p.UnitPrice)).InexactFloat64()
	}
	if p.Date == "" {
		p.Date = s.timestamp()
	}
	if p.SerialNumber == "" {
		p.SerialNumber = s.serialNumber()
	}
	s.purchases = append([]models.Purchase{p}, s.purchases...)
	c.insert(Purchases, p)

	if !p.SkipInventory {
		s.receiveStock(c, p)
	}
	if target := p.ChargeTarget(); !p.SkipFinancials && target != "" {
		s.addTransaction(c, models.Transaction{
			Type:       models.TransactionExpense,
			Amount:     p.Total,
			Category:   categoryMaterials,
			Account:    target,
			Notes:      purchaseNotes(p.MaterialName),
			PurchaseID: p.ID,
		})
	}
	return p
}

// receiveStock adds the purchased quantity to the named item, creating the
// item on first purchase, and records the IN movement.
func (s *Store) receiveStock(c *change, p models.Purchase) {
	var item models.InventoryItem
	if i := indexWhere(s.inventory, func(it models.InventoryItem) bool { return it.Name == p.MaterialName }); i >= 0 {
		s.inventory[i].Stock = addMoney(s.inventory[i].Stock, p.Quantity)
		s.inventory[i].LastPrice = p.UnitPrice
		item = s.inventory[i]
		c.update(Inventory, item.ID, item)
	} else {
		item = models.InventoryItem{
			ID:        s.newID(),
			Name:      p.MaterialName,
			Unit:      orDefault(p.Unit, defaultUnit),
			Stock:     p.Quantity,
			MinStock:  autoMinStock,
			Category:  rawMaterials,
			LastPrice: p.UnitPrice,
		}
		s.inventory = append(s.inventory, item)
		c.insert(Inventory, item)
	}
	s.addMovement(c, models.InventoryMovement{
		ItemID:   item.ID,
		ItemName: item.Name,
		Type:     models.MovementIn,
		Quantity: p.Quantity,
		Reason:   "شراء من مورد: " + orDefault(p.Supplier, "غير معروف"),
	})
}

func (s *Store) updatePurchase(c *change, p models.Purchase) {
	i := indexByID(s.purchases, p.ID)
	if i < 0 {
		return
	}
	old := s.purchases[i]
	if p.Total == 0 {
		p.Total = decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(p.UnitPrice)).InexactFloat64()
	}
	if p.Date == "" {
		p.Date = old.Date
	}
	if p.SerialNumber == "" {
		p.SerialNumber = old.SerialNumber
	}

	if !old.SkipInventory {
		s.adjustStock(c, old.MaterialName, -old.Quantity)
	}
	if !p.SkipInventory {
		s.adjustStock(c, p.MaterialName, p.Quantity)
	}

	if j := s.purchaseTransaction(old); j >= 0 {
		tx := s.transactions[j]
		tx.Amount = p.Total
		tx.Account = p.ChargeTarget()
		if tx.CustomerName != "" {
			tx.CustomerName = p.CustomerName
		}
		if tx.Notes == purchaseNotes(old.MaterialName) {
			tx.Notes = purchaseNotes(p.MaterialName)
		}
		tx.PurchaseID = p.ID
		s.updateTransaction(c, tx)
	}

	s.purchases[i] = p
	c.update(Purchases, p.ID, p)
}

func (s *Store) deletePurchase(c *change, id string) {
	i := indexByID(s.purchases, id)
	if i < 0 {
		return
	}
	p := s.purchases[i]
	if !p.SkipInventory {
		s.adjustStock(c, p.MaterialName, -p.Quantity)
	}
	if j := s.purchaseTransaction(p); j >= 0 {
		s.deleteTransaction(c, s.transactions[j].ID)
	}
	s.purchases = without(s.purchases, i)
	c.remove(Purchases, id)
}

// adjustStock moves the stock of every item with the given name by delta,
// clamping at zero.
func (s *Store) adjustStock(c *change, name string, delta float64) {
	for j, it := range s.inventory {
		if it.Name != name {
			continue
		}
		s.inventory[j].Stock = max(0, addMoney(it.Stock, delta))
		c.update(Inventory, it.ID, s.inventory[j])
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
