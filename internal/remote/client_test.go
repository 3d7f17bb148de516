package remote

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientWritesLowercaseAndReadsCamelCase(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	c := NewClient(backend, nil)

	require.NoError(t, c.Insert(ctx, TableCustomers, Record{"id": "1", "name": "Ali", "projectCost": 1000.0}))

	raw := backend.Rows(TableCustomers)
	require.Len(t, raw, 1)
	assert.Equal(t, 1000.0, raw[0]["projectcost"])
	assert.NotContains(t, raw[0], "projectCost")

	rows, err := c.SelectAll(ctx, TableCustomers)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"id": "1", "name": "Ali", "projectCost": 1000.0}}, rows)
}

func TestClientUpdateUpsertDelete(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	c := NewClient(backend, nil)

	require.NoError(t, c.Insert(ctx, TableAccounts, Record{"id": "1", "name": "Main", "balance": 0.0}))
	require.NoError(t, c.Update(ctx, TableAccounts, "1", Record{"balance": 70.0}))
	require.NoError(t, c.Upsert(ctx, TableSettings, Record{"id": "global", "taxRate": 14.0}))
	require.NoError(t, c.Upsert(ctx, TableSettings, Record{"id": "global", "taxRate": 10.0}))

	accounts, err := c.SelectAll(ctx, TableAccounts)
	require.NoError(t, err)
	assert.Equal(t, 70.0, accounts[0]["balance"])

	settings, err := c.SelectAll(ctx, TableSettings)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, 10.0, settings[0]["taxRate"])

	require.NoError(t, c.Delete(ctx, TableAccounts, "1"))
	accounts, err = c.SelectAll(ctx, TableAccounts)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestClientRejectsUnknownTable(t *testing.T) {
	c := NewClient(NewMemoryBackend(), nil)
	_, err := c.SelectAll(context.Background(), "pg_user")
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.ErrorIs(t, c.Insert(context.Background(), "x; drop", Record{"id": "1"}), ErrUnknownTable)
}

func TestMemoryBackendFailures(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	c := NewClient(backend, nil)
	boom := errors.New("offline")
	backend.FailTable(TableInvoices, boom)

	_, err := c.SelectAll(ctx, TableInvoices)
	assert.ErrorIs(t, err, boom)

	backend.FailTable(TableInvoices, nil)
	_, err = c.SelectAll(ctx, TableInvoices)
	assert.NoError(t, err)
}

func TestSubscribeDeliversChanges(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	c := NewClient(backend, nil)

	var hits atomic.Int32
	unsub, err := c.Subscribe(ctx, TableTransactions, func(ch Change) {
		if ch.Table == TableTransactions {
			hits.Add(1)
		}
	})
	require.NoError(t, err)

	require.NoError(t, c.Insert(ctx, TableTransactions, Record{"id": "t1"}))
	require.NoError(t, c.Insert(ctx, TableAccounts, Record{"id": "a1"}))
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)

	unsub()
	assert.Equal(t, 0, backend.Subscribers(TableTransactions))
	require.NoError(t, c.Insert(ctx, TableTransactions, Record{"id": "t2"}))
	backend.Wait()
	assert.Equal(t, int32(1), hits.Load())
}
