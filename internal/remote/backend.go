// Package remote is the optional relational mirror of the domain store:
// a table-per-collection backend plus the static field mapping between
// lowercase remote columns and camelCase local fields.
package remote

import "context"

// Change is a notification that a table was modified.
type Change struct {
	Table string `json:"table"`
	Op    string `json:"op"` // insert, update, delete
}

// Backend is a raw remote store speaking lowercase column names.
type Backend interface {
	SelectAll(ctx context.Context, table string) ([]Record, error)
	Insert(ctx context.Context, table string, records ...Record) error
	Update(ctx context.Context, table, id string, patch Record) error
	Upsert(ctx context.Context, table string, record Record) error
	Delete(ctx context.Context, table, id string) error
	// DeleteAll removes every row of the table.
	DeleteAll(ctx context.Context, table string) error
	// Subscribe calls fn for every change to table until the returned
	// function is called. Callbacks run on backend goroutines.
	Subscribe(ctx context.Context, table string, fn func(Change)) (func(), error)
}
