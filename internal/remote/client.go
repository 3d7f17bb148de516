package remote

import (
	"context"
	"fmt"
)

// Client is the mirror as seen by the application: local field names in,
// local field names out. Outbound records are lowercased; inbound records
// are mapped through the FieldMap.
type Client struct {
	backend Backend
	fields  *FieldMap
}

// NewClient wraps a backend. A nil field map selects the embedded default.
func NewClient(b Backend, fields *FieldMap) *Client {
	if fields == nil {
		fields = DefaultFieldMap()
	}
	return &Client{backend: b, fields: fields}
}

// Fields returns the field map in use.
func (c *Client) Fields() *FieldMap { return c.fields }

// SelectAll reads every row of table, mapped to local field names.
func (c *Client) SelectAll(ctx context.Context, table string) ([]Record, error) {
	if err := CheckTable(table); err != nil {
		return nil, err
	}
	rows, err := c.backend.SelectAll(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return c.fields.DenormalizeAll(rows), nil
}

// Insert writes one or more local records.
func (c *Client) Insert(ctx context.Context, table string, records ...Record) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := c.backend.Insert(ctx, table, NormalizeAll(records)...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update patches the row with the given id.
func (c *Client) Update(ctx context.Context, table, id string, patch Record) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	if err := c.backend.Update(ctx, table, id, Normalize(patch)); err != nil {
		return fmt.Errorf("update %s/%s: %w", table, id, err)
	}
	return nil
}

// Upsert inserts or replaces the row keyed by the record's id.
func (c *Client) Upsert(ctx context.Context, table string, record Record) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	if err := c.backend.Upsert(ctx, table, Normalize(record)); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// Delete removes the row with the given id.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	if err := c.backend.Delete(ctx, table, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	return nil
}

// DeleteAll wipes the table.
func (c *Client) DeleteAll(ctx context.Context, table string) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	if err := c.backend.DeleteAll(ctx, table); err != nil {
		return fmt.Errorf("wipe %s: %w", table, err)
	}
	return nil
}

// Subscribe registers fn for change notifications on table.
func (c *Client) Subscribe(ctx context.Context, table string, fn func(Change)) (func(), error) {
	if err := CheckTable(table); err != nil {
		return nil, err
	}
	unsub, err := c.backend.Subscribe(ctx, table, fn)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}
	return unsub, nil
}
