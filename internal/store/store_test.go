package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/kinz/internal/cache"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/remote"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store   *Store
	cache   *cache.Cache
	backend *remote.MemoryBackend
}

func openTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	return openNamedCache(t, "")
}

// openNamedCache lets one test hold several independent caches.
func openNamedCache(t *testing.T, name string) *cache.Cache {
	t.Helper()
	c, err := cache.Open("file:"+t.Name()+name+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testOptions(c *cache.Cache, mirror Mirror) Options {
	var n int
	var mu sync.Mutex
	return Options{
		Cache:  c,
		Mirror: mirror,
		Now:    func() time.Time { return testNow },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

// newTestStore returns a local-only store over a fresh in-memory cache.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(testOptions(openTestCache(t), nil))
}

// newMirroredStore wires the store to an in-memory remote.
func newMirroredStore(t *testing.T) fixture {
	t.Helper()
	c := openTestCache(t)
	backend := remote.NewMemoryBackend()
	s := New(testOptions(c, remote.NewClient(backend, nil)))
	return fixture{store: s, cache: c, backend: backend}
}

func accountByName(t *testing.T, s *Store, name string) models.Account {
	t.Helper()
	for _, a := range s.Accounts() {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("account %q not found", name)
	return models.Account{}
}

func customerByName(t *testing.T, s *Store, name string) models.Customer {
	t.Helper()
	for _, c := range s.Customers() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("customer %q not found", name)
	return models.Customer{}
}

func TestNewLoadsDefaults(t *testing.T) {
	s := newTestStore(t)

	accounts := s.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, models.MainTreasury, accounts[0].Name)
	assert.Equal(t, "ج.م", s.Settings().Currency)
	assert.Equal(t, models.SingletonID, s.ContractOptions().ID)
	assert.True(t, s.DarkMode())
	assert.Empty(t, s.Transactions())
	assert.False(t, s.CloudLoading())

	_, signedIn := s.CurrentUser()
	assert.False(t, signedIn)
}

func TestNewSubstitutesDefaultsForCorruptEntries(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.SaveRaw(Accounts.CacheKey(), []byte(`{"broken`)))
	require.NoError(t, c.SaveRaw(Transactions.CacheKey(), []byte(`not json`)))

	s := New(testOptions(c, nil))

	assert.Equal(t, models.DefaultAccounts(), s.Accounts())
	assert.Empty(t, s.Transactions())
}

func TestStatePersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)
	s := New(testOptions(c, nil))

	_, err := s.AddAccount(ctx, models.Account{Name: "Main"})
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, models.Transaction{Type: models.TransactionIncome, Amount: 100, Account: "Main"})
	require.NoError(t, err)
	require.NoError(t, s.SetDarkMode(ctx, false))

	reloaded := New(testOptions(c, nil))
	assert.Equal(t, 100.0, accountByName(t, reloaded, "Main").Balance)
	assert.Len(t, reloaded.Transactions(), 1)
	assert.False(t, reloaded.DarkMode())
}

func TestObserversSeeEveryTouchedCollection(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var got []Collection
	unsubscribe := s.Subscribe(func(e Event) {
		assert.False(t, e.Remote)
		got = append(got, e.Collection)
	})

	_, err := s.AddTransaction(ctx, models.Transaction{Type: models.TransactionIncome, Amount: 5, Account: models.MainTreasury})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Collection{Transactions, Accounts}, got)

	unsubscribe()
	_, err = s.AddTransaction(ctx, models.Transaction{Type: models.TransactionIncome, Amount: 5, Account: models.MainTreasury})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestObserverMayReadStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var balance float64
	s.Subscribe(func(e Event) {
		if e.Collection == Accounts {
			balance = s.Accounts()[0].Balance
		}
	})
	_, err := s.AddTransaction(ctx, models.Transaction{Type: models.TransactionIncome, Amount: 12.5, Account: models.MainTreasury})
	require.NoError(t, err)
	assert.Equal(t, 12.5, balance)
}

func TestMirrorReceivesLowercaseWrites(t *testing.T) {
	ctx := context.Background()
	f := newMirroredStore(t)
	assert.True(t, f.store.CloudLoading())

	_, err := f.store.AddCustomer(ctx, models.Customer{Name: "Ali", ProjectCost: 1000})
	require.NoError(t, err)
	_, err = f.store.AddTransaction(ctx, models.Transaction{Type: models.TransactionExpense, Amount: 200, CustomerName: "Ali"})
	require.NoError(t, err)

	customers := f.backend.Rows(remote.TableCustomers)
	require.Len(t, customers, 1)
	assert.Equal(t, 1000.0, customers[0]["projectcost"])
	assert.Equal(t, -200.0, customers[0]["balance"])

	txs := f.backend.Rows(remote.TableTransactions)
	require.Len(t, txs, 1)
	assert.Equal(t, "Ali", txs[0]["customername"])
	assert.NotContains(t, txs[0], "customerName")
}

func TestRemoteFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	f := newMirroredStore(t)
	f.backend.FailTable(remote.TableTransactions, errors.New("offline"))

	tx, err := f.store.AddTransaction(ctx, models.Transaction{Type: models.TransactionIncome, Amount: 40, Account: models.MainTreasury})
	require.NoError(t, err)

	assert.Empty(t, f.backend.Rows(remote.TableTransactions))
	got, err := f.store.Transaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.Amount)
	assert.Equal(t, 40.0, f.store.Accounts()[0].Balance)
}

func TestConcurrentWritesReachMirrorInOrder(t *testing.T) {
	ctx := context.Background()
	f := newMirroredStore(t)
	f.backend.Seed(remote.TableAccounts, remote.Record{"id": "1", "name": models.MainTreasury, "balance": 0.0})

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.store.AddTransaction(ctx, models.Transaction{Type: models.TransactionIncome, Amount: 1, Account: models.MainTreasury})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 40.0, accountByName(t, f.store, models.MainTreasury).Balance)
	rows := f.backend.Rows(remote.TableAccounts)
	require.Len(t, rows, 1)
	assert.Equal(t, 40.0, rows[0]["balance"])
	assert.Len(t, f.backend.Rows(remote.TableTransactions), 40)
}

func TestLocalOnlyCollectionsNeverReachMirror(t *testing.T) {
	ctx := context.Background()
	f := newMirroredStore(t)

	_, err := f.store.AddServiceItem(ctx, models.ServiceItem{Name: "تركيب", DefaultPrice: 300})
	require.NoError(t, err)
	require.NoError(t, f.store.SetDarkMode(ctx, false))

	for _, table := range remote.Tables {
		assert.Empty(t, f.backend.Rows(table), table)
	}
	price, ok := f.store.PriceFor("تركيب")
	assert.True(t, ok)
	assert.Equal(t, 300.0, price)
}

func TestReplaceCollectionOverwritesWhole(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.AddCustomer(ctx, models.Customer{Name: "Local"})
	require.NoError(t, err)

	var remoteEvents int
	s.Subscribe(func(e Event) {
		if e.Remote {
			remoteEvents++
		}
	})

	err = s.ReplaceCollection(remote.TableCustomers, []remote.Record{
		{"id": "r1", "name": "Remote", "projectCost": "2500", "status": "production"},
	})
	require.NoError(t, err)

	customers := s.Customers()
	require.Len(t, customers, 1)
	assert.Equal(t, "Remote", customers[0].Name)
	assert.Equal(t, models.Number(2500), customers[0].ProjectCost)
	assert.Equal(t, 1, remoteEvents)
}

func TestReplaceSingletonTakesFirstRecord(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.ReplaceCollection(remote.TableSettings, []remote.Record{
		{"id": "global", "companyName": "Remote Co", "taxRate": 10.0},
		{"id": "other", "companyName": "Ignored"},
	}))
	assert.Equal(t, "Remote Co", s.Settings().CompanyName)

	require.NoError(t, s.ReplaceCollection(remote.TableSettings, nil))
	assert.Equal(t, "Remote Co", s.Settings().CompanyName)
}

func TestReplaceRejectsUndecodableSnapshot(t *testing.T) {
	s := newTestStore(t)
	err := s.ReplaceCollection(remote.TableAccounts, []remote.Record{{"id": "1", "balance": "lots"}})
	assert.Error(t, err)
	assert.Equal(t, models.DefaultAccounts(), s.Accounts())

	assert.ErrorIs(t, s.ReplaceCollection("sessions", nil), remote.ErrUnknownTable)
}

func TestRecordsForSingletonAndCollections(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.Records(remote.TableSettings)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "global", settings[0]["id"])

	accounts, err := s.Records(remote.TableAccounts)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, models.MainTreasury, accounts[0]["name"])

	customers, err := s.Records(remote.TableCustomers)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestFactoryReset(t *testing.T) {
	ctx := context.Background()
	f := newMirroredStore(t)
	s := f.store

	_, err := s.AddCustomer(ctx, models.Customer{Name: "Ali"})
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, models.Transaction{Type: models.TransactionIncome, Amount: 10, Account: models.MainTreasury})
	require.NoError(t, err)
	_, ok := s.Login(ctx, "admin", "123")
	require.True(t, ok)
	require.NoError(t, f.cache.Save("other_app", 1))

	require.NoError(t, s.FactoryReset(ctx))

	for _, table := range remote.Tables {
		assert.Empty(t, f.backend.Rows(table), table)
	}
	assert.Empty(t, s.Customers())
	assert.Empty(t, s.Transactions())
	assert.Equal(t, models.DefaultAccounts(), s.Accounts())
	_, signedIn := s.CurrentUser()
	assert.False(t, signedIn)

	keys, err := f.cache.Keys()
	require.NoError(t, err)
	assert.Contains(t, keys, "other_app")
	assert.NotContains(t, keys, Customers.CacheKey())
}
