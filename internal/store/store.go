// Package store holds the application state: every collection in memory,
// mirrored to the persistent cache on each change and, best effort, to the
// remote mirror. All mutations go through Store methods.
package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diewo77/kinz/internal/cache"
	"github.com/diewo77/kinz/internal/logger"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/remote"
)

// Collection names a piece of state. Synchronized collections share their
// name with the remote table.
type Collection string

const (
	Customers          Collection = remote.TableCustomers
	Purchases          Collection = remote.TablePurchases
	Inventory          Collection = remote.TableInventory
	InventoryMovements Collection = remote.TableInventoryMovements
	Inspections        Collection = remote.TableInspections
	Invoices           Collection = remote.TableInvoices
	Users              Collection = remote.TableUsers
	Settings           Collection = remote.TableSettings
	Transactions       Collection = remote.TableTransactions
	Accounts           Collection = remote.TableAccounts
	Employees          Collection = remote.TableEmployees
	Recurring          Collection = remote.TableRecurring
	ContractOptions    Collection = remote.TableContractOptions

	// Local only.
	ServiceItems Collection = "service_items"
	CurrentUser  Collection = "current_user"
	Theme        Collection = "theme"
)

// CacheKey is the persistent cache key owning the collection.
func (c Collection) CacheKey() string { return cache.Prefix + string(c) }

// Event tells observers that a collection changed.
type Event struct {
	Collection Collection
	Remote     bool // true when the change came from a remote snapshot
}

// Mirror is the remote side as the store writes to it. *remote.Client
// satisfies it.
type Mirror interface {
	Insert(ctx context.Context, table string, records ...remote.Record) error
	Update(ctx context.Context, table, id string, patch remote.Record) error
	Upsert(ctx context.Context, table string, record remote.Record) error
	Delete(ctx context.Context, table, id string) error
	DeleteAll(ctx context.Context, table string) error
}

// Options configures a Store. Cache is required; Mirror may be nil for
// local-only mode.
type Options struct {
	Cache  *cache.Cache
	Mirror Mirror
	Log    *zerolog.Logger
	Now    func() time.Time
	NewID  func() string
}

// Store is the single owner of application state.
type Store struct {
	mu      sync.Mutex
	flushMu sync.Mutex // orders remote writes; taken while mu is held
	cache   *cache.Cache
	mirror  Mirror
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string

	customers       []models.Customer
	accounts        []models.Account
	transactions    []models.Transaction
	purchases       []models.Purchase
	inventory       []models.InventoryItem
	movements       []models.InventoryMovement
	inspections     []models.Inspection
	invoices        []models.Invoice
	employees       []models.Employee
	recurring       []models.RecurringExpense
	users           []models.User
	serviceItems    []models.ServiceItem
	settings        models.Settings
	contractOptions models.ContractOptions
	currentUser     *models.User
	darkMode        bool
	cloudLoading    bool

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

// New loads every collection from the cache, substituting defaults for
// missing or corrupt entries, and runs the one-time user permission
// back-fill.
func New(opts Options) *Store {
	s := &Store{
		cache:     opts.Cache,
		mirror:    opts.Mirror,
		now:       opts.Now,
		newID:     opts.NewID,
		observers: make(map[int]func(Event)),
	}
	if opts.Log != nil {
		s.log = *opts.Log
	} else {
		s.log = logger.WithComponent("store")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.load()
	s.cloudLoading = s.mirror != nil
	return s
}

func (s *Store) load() {
	c := s.cache
	s.transactions = cache.Load(c, Transactions.CacheKey(), []models.Transaction{})
	s.accounts = cache.Load(c, Accounts.CacheKey(), models.DefaultAccounts())
	s.employees = cache.Load(c, Employees.CacheKey(), []models.Employee{})
	s.recurring = cache.Load(c, Recurring.CacheKey(), []models.RecurringExpense{})
	s.customers = cache.Load(c, Customers.CacheKey(), []models.Customer{})
	s.purchases = cache.Load(c, Purchases.CacheKey(), []models.Purchase{})
	s.inventory = cache.Load(c, Inventory.CacheKey(), []models.InventoryItem{})
	s.movements = cache.Load(c, InventoryMovements.CacheKey(), []models.InventoryMovement{})
	s.inspections = cache.Load(c, Inspections.CacheKey(), []models.Inspection{})
	s.invoices = cache.Load(c, Invoices.CacheKey(), []models.Invoice{})
	s.serviceItems = cache.Load(c, ServiceItems.CacheKey(), []models.ServiceItem{})
	s.settings = cache.Load(c, Settings.CacheKey(), models.DefaultSettings())
	s.contractOptions = cache.Load(c, ContractOptions.CacheKey(), models.DefaultContractOptions())
	s.currentUser = cache.Load[*models.User](c, CurrentUser.CacheKey(), nil)
	s.darkMode = cache.Load(c, Theme.CacheKey(), true)

	s.users = cache.Load(c, Users.CacheKey(), []models.User{})
	s.backfillPermissions()
	for _, def := range models.DefaultUsers() {
		if indexWhere(s.users, func(u models.User) bool { return u.Username == def.Username }) < 0 {
			s.users = append(s.users, def)
		}
	}
	s.refreshCurrentUser()
	s.persist([]Collection{Users, CurrentUser})
}

// Subscribe registers fn for change events. Callbacks run after the
// mutation is complete and the store lock is released.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Store) emit(cols []Collection, fromRemote bool) {
	if len(cols) == 0 {
		return
	}
	s.obsMu.Lock()
	fns := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	for _, col := range cols {
		for _, fn := range fns {
			fn(Event{Collection: col, Remote: fromRemote})
		}
	}
}

// CloudLoading reports whether the startup sync is still running.
func (s *Store) CloudLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloudLoading
}

// SetCloudLoading is flipped off by the sync controller once every table
// has been probed.
func (s *Store) SetCloudLoading(v bool) {
	s.mu.Lock()
	s.cloudLoading = v
	s.mu.Unlock()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (s *Store) serialNumber() string {
	return "PO-" + formatMillis(s.now())
}

// change collects what one operation touched: the collections to persist
// and the remote writes to replay once the lock is released.
type change struct {
	dirty  []Collection
	writes []write
}

type writeOp int

const (
	opInsert writeOp = iota
	opUpdate
	opUpsert
	opDelete
	opDeleteAll
)

type write struct {
	op     writeOp
	table  string
	id     string
	record remote.Record
}

func (c *change) touch(col Collection) {
	for _, d := range c.dirty {
		if d == col {
			return
		}
	}
	c.dirty = append(c.dirty, col)
}

func (c *change) queue(op writeOp, col Collection, id string, v any) {
	c.touch(col)
	if !remote.IsTable(string(col)) {
		return
	}
	w := write{op: op, table: string(col), id: id}
	if v != nil {
		rec, err := remote.ToRecord(v)
		if err != nil {
			// Only unmarshalable values reach here, which the model types never are.
			panic(fmt.Sprintf("store: encode %s: %v", col, err))
		}
		w.record = rec
	}
	c.writes = append(c.writes, w)
}

func (c *change) insert(col Collection, v any)            { c.queue(opInsert, col, "", v) }
func (c *change) update(col Collection, id string, v any) { c.queue(opUpdate, col, id, v) }
func (c *change) upsert(col Collection, v any)            { c.queue(opUpsert, col, "", v) }
func (c *change) remove(col Collection, id string)        { c.queue(opDelete, col, id, nil) }

// apply runs fn under the store lock, persists what it touched, then
// replays the remote writes and notifies observers. Remote failures are
// logged and never roll back local state.
//
// flushMu is taken before mu is released, so batches reach the mirror in
// the order their changes were applied and an older absolute balance patch
// cannot overwrite a newer one.
func (s *Store) apply(ctx context.Context, fn func(c *change) error) error {
	c := &change{}
	s.mu.Lock()
	if err := fn(c); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persist(c.dirty)
	s.flushMu.Lock()
	s.mu.Unlock()

	s.flush(ctx, c.writes)
	s.flushMu.Unlock()
	s.emit(c.dirty, false)
	return nil
}

func (s *Store) flush(ctx context.Context, writes []write) {
	if s.mirror == nil {
		return
	}
	for _, w := range writes {
		var err error
		switch w.op {
		case opInsert:
			err = s.mirror.Insert(ctx, w.table, w.record)
		case opUpdate:
			err = s.mirror.Update(ctx, w.table, w.id, w.record)
		case opUpsert:
			err = s.mirror.Upsert(ctx, w.table, w.record)
		case opDelete:
			err = s.mirror.Delete(ctx, w.table, w.id)
		case opDeleteAll:
			err = s.mirror.DeleteAll(ctx, w.table)
		}
		if err != nil {
			s.log.Error().Err(err).Str("table", w.table).Str("op", w.op.String()).Msg("remote write failed")
		}
	}
}

func (o writeOp) String() string {
	switch o {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	case opUpsert:
		return "upsert"
	case opDelete:
		return "delete"
	default:
		return "delete_all"
	}
}

// persist writes each dirty collection to its cache key. Caller holds mu.
func (s *Store) persist(cols []Collection) {
	for _, col := range cols {
		if err := s.cache.Save(col.CacheKey(), s.value(col)); err != nil {
			s.log.Error().Err(err).Str("collection", string(col)).Msg("cache write failed")
		}
	}
}

// value returns the in-memory value backing col. Caller holds mu.
func (s *Store) value(col Collection) any {
	switch col {
	case Customers:
		return s.customers
	case Purchases:
		return s.purchases
	case Inventory:
		return s.inventory
	case InventoryMovements:
		return s.movements
	case Inspections:
		return s.inspections
	case Invoices:
		return s.invoices
	case Users:
		return s.users
	case Settings:
		return s.settings
	case Transactions:
		return s.transactions
	case Accounts:
		return s.accounts
	case Employees:
		return s.employees
	case Recurring:
		return s.recurring
	case ContractOptions:
		return s.contractOptions
	case ServiceItems:
		return s.serviceItems
	case CurrentUser:
		return s.currentUser
	case Theme:
		return s.darkMode
	}
	return nil
}

func indexWhere[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

func indexByID[T interface{ GetID() string }](items []T, id string) int {
	return indexWhere(items, func(it T) bool { return it.GetID() == id })
}

func without[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func clone[T any](items []T) []T {
	return append([]T(nil), items...)
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
