package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/kinz/internal/models"
)

func storeWithMain(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	_, err := s.AddAccount(context.Background(), models.Account{Name: "Main"})
	require.NoError(t, err)
	return s
}

func itemByName(t *testing.T, s *Store, name string) models.InventoryItem {
	t.Helper()
	for _, it := range s.Inventory() {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("inventory item %q not found", name)
	return models.InventoryItem{}
}

func TestPurchaseOfNewMaterial(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)

	p, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 10, UnitPrice: 5, Account: "Main"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Total)
	assert.Equal(t, "PO-1773568800000", p.SerialNumber)

	item := itemByName(t, s, "Wood")
	assert.Equal(t, 10.0, item.Stock)
	assert.Equal(t, 5.0, item.LastPrice)
	assert.Equal(t, defaultUnit, item.Unit)
	assert.Equal(t, float64(autoMinStock), item.MinStock)

	moves := s.Movements()
	require.Len(t, moves, 1)
	assert.Equal(t, models.MovementIn, moves[0].Type)
	assert.Equal(t, 10.0, moves[0].Quantity)
	assert.Equal(t, item.ID, moves[0].ItemID)
	assert.Equal(t, "شراء من مورد: غير معروف", moves[0].Reason)

	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionExpense, txs[0].Type)
	assert.Equal(t, 50.0, txs[0].Amount)
	assert.Equal(t, "Main", txs[0].Account)
	assert.Equal(t, categoryMaterials, txs[0].Category)
	assert.Equal(t, "شراء Wood", txs[0].Notes)
	assert.Equal(t, p.ID, txs[0].PurchaseID)
	assert.Equal(t, -50.0, accountByName(t, s, "Main").Balance)
}

func TestPurchaseOfStockedMaterial(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	_, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 10, UnitPrice: 5, Account: "Main"})
	require.NoError(t, err)

	_, err = s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 4, UnitPrice: 6, Supplier: "Nile", Account: "Main"})
	require.NoError(t, err)

	require.Len(t, s.Inventory(), 1)
	item := itemByName(t, s, "Wood")
	assert.Equal(t, 14.0, item.Stock)
	assert.Equal(t, 6.0, item.LastPrice)
	assert.Len(t, s.Movements(), 2)
	assert.Equal(t, "شراء من مورد: Nile", s.Movements()[0].Reason)
	assert.Equal(t, -74.0, accountByName(t, s, "Main").Balance)
}

func TestPurchaseForCustomerChargesCustomer(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	_, err := s.AddCustomer(ctx, models.Customer{Name: "Ali"})
	require.NoError(t, err)

	_, err = s.AddPurchase(ctx, models.Purchase{MaterialName: "Glass", Quantity: 2, UnitPrice: 30, Account: "Main", CustomerName: "Ali"})
	require.NoError(t, err)

	assert.Equal(t, -60.0, customerByName(t, s, "Ali").Balance)
	assert.Equal(t, 0.0, accountByName(t, s, "Main").Balance)
	assert.Equal(t, "Ali", s.Transactions()[0].Account)
}

func TestPurchaseSkipFlags(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)

	p, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Paint", Quantity: 1, UnitPrice: 80, Total: 75, Account: "Main", SkipInventory: true, SkipFinancials: true})
	require.NoError(t, err)

	assert.Equal(t, 75.0, p.Total)
	assert.Empty(t, s.Inventory())
	assert.Empty(t, s.Movements())
	assert.Empty(t, s.Transactions())
	assert.Len(t, s.Purchases(), 1)
}

func TestPurchaseValidation(t *testing.T) {
	s := storeWithMain(t)
	_, err := s.AddPurchase(context.Background(), models.Purchase{Quantity: 0, UnitPrice: -1})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Violations["materialName"])
	assert.Contains(t, verr.Violations, "quantity")
	assert.Contains(t, verr.Violations, "unitPrice")
	assert.Empty(t, s.Purchases())
}

func TestUpdatePurchaseMovesStockAndExpense(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	_, err := s.AddAccount(ctx, models.Account{Name: "Side"})
	require.NoError(t, err)
	p, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 10, UnitPrice: 5, Account: "Main"})
	require.NoError(t, err)

	p.Quantity = 6
	p.Total = 0
	p.Account = "Side"
	require.NoError(t, s.UpdatePurchase(ctx, p))

	assert.Equal(t, 6.0, itemByName(t, s, "Wood").Stock)
	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, 30.0, txs[0].Amount)
	assert.Equal(t, "Side", txs[0].Account)
	assert.Equal(t, 0.0, accountByName(t, s, "Main").Balance)
	assert.Equal(t, -30.0, accountByName(t, s, "Side").Balance)
	assert.Equal(t, 30.0, s.Purchases()[0].Total)
}

func TestDeletePurchaseReversesEverything(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	p, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 10, UnitPrice: 5, Account: "Main"})
	require.NoError(t, err)
	_, err = s.ConsumeMaterial(ctx, Consumption{ItemName: "Wood", Quantity: 7})
	require.NoError(t, err)

	require.NoError(t, s.DeletePurchase(ctx, p.ID))

	assert.Equal(t, 0.0, itemByName(t, s, "Wood").Stock)
	assert.Empty(t, s.Purchases())
	assert.Empty(t, s.Transactions())
	assert.Equal(t, 0.0, accountByName(t, s, "Main").Balance)

	require.NoError(t, s.DeletePurchase(ctx, "missing"))
}

func TestDeletePurchaseFindsUnlinkedExpenseByNotes(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	p, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Glass", Quantity: 1, UnitPrice: 20, Account: "Main", SkipFinancials: true})
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, models.Transaction{Type: models.TransactionExpense, Amount: 20, Account: "Main", Notes: "شراء Glass"})
	require.NoError(t, err)
	require.Equal(t, -20.0, accountByName(t, s, "Main").Balance)

	require.NoError(t, s.DeletePurchase(ctx, p.ID))
	assert.Empty(t, s.Transactions())
	assert.Equal(t, 0.0, accountByName(t, s, "Main").Balance)
}

func TestDeletePurchaseLeavesOtherLinesExpense(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	first, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 1, UnitPrice: 10, Account: "Main"})
	require.NoError(t, err)
	second, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 2, UnitPrice: 10, Account: "Main"})
	require.NoError(t, err)

	require.NoError(t, s.DeletePurchase(ctx, first.ID))

	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, second.ID, txs[0].PurchaseID)
	assert.Equal(t, 20.0, txs[0].Amount)
}

func TestStockNeverNegative(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)

	steps := []func() error{
		func() error {
			_, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 3, UnitPrice: 1, Account: "Main"})
			return err
		},
		func() error { _, err := s.ConsumeMaterial(ctx, Consumption{ItemName: "Wood", Quantity: 5}); return err },
		func() error {
			_, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 2, UnitPrice: 1, Account: "Main"})
			return err
		},
		func() error { return s.DeletePurchase(ctx, s.Purchases()[1].ID) },
		func() error {
			_, err := s.ConsumeMaterial(ctx, Consumption{ItemName: "Wood", Quantity: 1.5})
			return err
		},
		func() error { return s.DeletePurchase(ctx, s.Purchases()[0].ID) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		for _, it := range s.Inventory() {
			assert.GreaterOrEqual(t, it.Stock, 0.0, "step %d", i)
		}
	}
	assert.Equal(t, 0.0, itemByName(t, s, "Wood").Stock)
}

func TestConsumeMaterial(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	_, err := s.AddPurchase(ctx, models.Purchase{MaterialName: "Wood", Quantity: 10, UnitPrice: 5, Account: "Main"})
	require.NoError(t, err)
	before := len(s.Transactions())

	m, err := s.ConsumeMaterial(ctx, Consumption{ItemName: "Wood", Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, models.MovementOut, m.Type)
	assert.Equal(t, 20.0, m.Value)
	assert.Equal(t, "سحب تشغيل", m.Reason)
	assert.Equal(t, 6.0, itemByName(t, s, "Wood").Stock)
	assert.Len(t, s.Transactions(), before)

	m, err = s.ConsumeMaterial(ctx, Consumption{ItemName: "Steel", Quantity: 1})
	require.NoError(t, err)
	assert.Empty(t, m.ID)
}

func TestBulkPurchaseBooksOneExpense(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)

	lines, err := s.AddBulkPurchase(ctx, BulkPurchase{
		Account:  "Main",
		Supplier: "Nile",
		Items: []BulkLine{
			{MaterialName: "Wood", Quantity: 10, UnitPrice: 5},
			{MaterialName: "Glue", Quantity: 2, UnitPrice: 12.5, Unit: "لتر"},
			{MaterialName: "", Quantity: 1, UnitPrice: 100},
		},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, lines[0].SerialNumber, lines[1].SerialNumber)
	assert.True(t, lines[0].SkipFinancials)

	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, 75.0, txs[0].Amount)
	assert.Equal(t, "شراء مواد من مورد: Nile", txs[0].Notes)
	assert.Equal(t, -75.0, accountByName(t, s, "Main").Balance)
	assert.Equal(t, "لتر", itemByName(t, s, "Glue").Unit)
	assert.Equal(t, 2.0, itemByName(t, s, "Glue").Stock)
}

func TestBulkPurchaseProvidedTotalWins(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	_, err := s.AddBulkPurchase(ctx, BulkPurchase{Account: "Main", TotalAmount: 40})
	require.NoError(t, err)
	assert.Equal(t, 40.0, s.Transactions()[0].Amount)
	assert.Equal(t, "شراء مواد من مورد: غير محدد", s.Transactions()[0].Notes)
}

func TestServiceOrderRequiresCustomer(t *testing.T) {
	s := storeWithMain(t)
	_, err := s.AddServiceOrder(context.Background(), ServiceOrder{
		CustomerID: "missing",
		Lines:      []ServiceLine{{Name: "تركيب", Price: 100}},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations, "customerId")
	assert.Empty(t, s.Purchases())
	assert.Empty(t, s.Transactions())
}

func TestServiceOrderChargesCustomerPerLine(t *testing.T) {
	ctx := context.Background()
	s := storeWithMain(t)
	ali, err := s.AddCustomer(ctx, models.Customer{Name: "Ali"})
	require.NoError(t, err)

	lines, err := s.AddServiceOrder(ctx, ServiceOrder{
		CustomerID: ali.ID,
		Supplier:   "Nile",
		Lines: []ServiceLine{
			{Name: "تركيب", Price: 100},
			{Name: "نقل", Price: 50},
			{Name: "فارغ", Price: 0},
		},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	serial := lines[0].SerialNumber
	assert.Equal(t, serial, lines[1].SerialNumber)
	assert.True(t, lines[0].SkipInventory)
	assert.Equal(t, ali.ID, lines[0].CustomerID)
	assert.Empty(t, s.Inventory())

	txs := s.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "خدمة/توريد: نقل", txs[0].Category)
	assert.Equal(t, "توريد: نقل - مورد: Nile ("+serial+")", txs[0].Notes)
	assert.Equal(t, -150.0, customerByName(t, s, "Ali").Balance)
	assert.Equal(t, 0.0, accountByName(t, s, "Main").Balance)

	n, err := s.DeletePurchaseGroup(ctx, serial)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.Purchases())
	assert.Empty(t, s.Transactions())
	assert.Equal(t, 0.0, customerByName(t, s, "Ali").Balance)
}

func TestInventoryItemLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item, err := s.AddInventoryItem(ctx, models.InventoryItem{Name: "Hinge", Unit: "قطعة", Stock: 40, MinStock: 50})
	require.NoError(t, err)
	moves := s.Movements()
	require.Len(t, moves, 1)
	assert.Equal(t, models.MovementAdjust, moves[0].Type)
	assert.Equal(t, "رصيد افتتاحي", moves[0].Reason)
	assert.Equal(t, 40.0, moves[0].Quantity)
	assert.Len(t, s.LowStock(), 1)

	item.Stock = -3
	require.NoError(t, s.UpdateInventoryItem(ctx, item))
	assert.Equal(t, 0.0, itemByName(t, s, "Hinge").Stock)

	require.NoError(t, s.DeleteInventoryItem(ctx, item.ID))
	assert.Empty(t, s.Inventory())
	assert.Len(t, s.Movements(), 1)
}
