// Package syncer reconciles the local store with the remote mirror at
// startup and keeps it current through per-table change subscriptions.
package syncer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/diewo77/kinz/internal/logger"
	"github.com/diewo77/kinz/internal/remote"
)

// MigrationLimit caps how many local records are pushed per table when the
// remote table is empty.
const MigrationLimit = 50

// Remote is the part of remote.Client the controller needs.
type Remote interface {
	SelectAll(ctx context.Context, table string) ([]remote.Record, error)
	Insert(ctx context.Context, table string, records ...remote.Record) error
	Subscribe(ctx context.Context, table string, fn func(remote.Change)) (func(), error)
}

// Store is the part of store.Store the controller needs.
type Store interface {
	Records(table string) ([]remote.Record, error)
	ReplaceCollection(table string, records []remote.Record) error
	SetCloudLoading(v bool)
	FactoryReset(ctx context.Context) error
}

// Action is what the startup pass did with one table.
type Action string

const (
	ActionSkipped  Action = "skipped"
	ActionMigrated Action = "migrated"
	ActionAdopted  Action = "adopted"
	ActionNoop     Action = "noop"
)

// Outcome reports the startup pass for one table.
type Outcome struct {
	Table  string
	Action Action
	Count  int
	Err    error
}

// Controller runs the startup sync and owns the change subscriptions.
type Controller struct {
	remote Remote
	store  Store
	log    zerolog.Logger

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// New returns a controller. A nil logger selects the "syncer" component
// logger.
func New(r Remote, s Store, log *zerolog.Logger) *Controller {
	c := &Controller{remote: r, store: s}
	if log != nil {
		c.log = *log
	} else {
		c.log = logger.WithComponent("syncer")
	}
	return c
}

// Sync visits every table in order and either pushes local data to an empty
// remote table, adopts the remote rows, or leaves both sides alone. A table
// whose probe fails is skipped. The cloud-loading flag is cleared at the end.
func (c *Controller) Sync(ctx context.Context) []Outcome {
	out := make([]Outcome, 0, len(remote.Tables))
	for _, table := range remote.Tables {
		o := c.syncTable(ctx, table)
		ev := c.log.Info()
		if o.Err != nil {
			ev = c.log.Error().Err(o.Err)
		}
		ev.Str("table", table).Str("action", string(o.Action)).Int("count", o.Count).Msg("table synced")
		out = append(out, o)
	}
	c.store.SetCloudLoading(false)
	return out
}

func (c *Controller) syncTable(ctx context.Context, table string) Outcome {
	rows, err := c.remote.SelectAll(ctx, table)
	if err != nil {
		return Outcome{Table: table, Action: ActionSkipped, Err: err}
	}
	if len(rows) > 0 {
		if err := c.store.ReplaceCollection(table, rows); err != nil {
			return Outcome{Table: table, Action: ActionSkipped, Err: err}
		}
		return Outcome{Table: table, Action: ActionAdopted, Count: len(rows)}
	}

	local, err := c.store.Records(table)
	if err != nil {
		return Outcome{Table: table, Action: ActionSkipped, Err: err}
	}
	if len(local) == 0 {
		return Outcome{Table: table, Action: ActionNoop}
	}
	if len(local) > MigrationLimit {
		local = local[:MigrationLimit]
	}
	batch := make([]remote.Record, len(local))
	for i, r := range local {
		batch[i] = coerceProjectCost(r)
	}
	if err := c.remote.Insert(ctx, table, batch...); err != nil {
		return Outcome{Table: table, Action: ActionSkipped, Err: fmt.Errorf("migrate %s: %w", table, err)}
	}
	return Outcome{Table: table, Action: ActionMigrated, Count: len(batch)}
}

// Subscribe registers one change listener per table. Every notification
// refetches the whole table and replaces the local collection.
func (c *Controller) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("subscribe: controller closed")
	}
	for _, table := range remote.Tables {
		unsub, err := c.remote.Subscribe(ctx, table, func(ch remote.Change) {
			c.refetch(ctx, table, ch.Op)
		})
		if err != nil {
			c.log.Error().Err(err).Str("table", table).Msg("subscribe failed")
			continue
		}
		c.unsubs = append(c.unsubs, unsub)
	}
	return nil
}

func (c *Controller) refetch(ctx context.Context, table, op string) {
	rows, err := c.remote.SelectAll(ctx, table)
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("op", op).Msg("refetch failed")
		return
	}
	if err := c.store.ReplaceCollection(table, rows); err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("op", op).Msg("replace failed")
		return
	}
	c.log.Debug().Str("table", table).Str("op", op).Int("rows", len(rows)).Msg("remote change applied")
}

// Run performs the startup pass and then subscribes.
func (c *Controller) Run(ctx context.Context) ([]Outcome, error) {
	out := c.Sync(ctx)
	return out, c.Subscribe(ctx)
}

// FactoryReset wipes both sides through the store while the change
// subscriptions are paused, pushes the reloaded defaults to the emptied
// remote, then resubscribes. Delete notifications from the wipe never reach
// the store.
func (c *Controller) FactoryReset(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("factory reset: controller closed")
	}
	paused := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()
	for _, unsub := range paused {
		unsub()
	}

	if err := c.store.FactoryReset(ctx); err != nil {
		return err
	}
	c.Sync(ctx)
	if len(paused) == 0 {
		return nil
	}
	return c.Subscribe(ctx)
}

// Close cancels every subscription. It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.closed = true
	c.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

// coerceProjectCost turns a numeric-string projectCost into a number.
// Text that does not parse becomes zero.
func coerceProjectCost(r remote.Record) remote.Record {
	s, ok := r["projectCost"].(string)
	if !ok {
		return r
	}
	out := r.Clone()
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		out["projectCost"] = 0.0
		return out
	}
	out["projectCost"] = d.InexactFloat64()
	return out
}
