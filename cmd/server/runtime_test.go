package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/kinz/internal/config"
	"github.com/diewo77/kinz/internal/db"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/remote"
)

func unreachableConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Cache: config.CacheConfig{Path: filepath.Join(t.TempDir(), "kinz.db")},
		Remote: config.RemoteConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    1,
			User:    "kinz",
			DBName:  "kinz",
			SSLMode: "disable",
		},
		App: config.AppConfig{Migrations: true},
	}
}

func assertLocalOnly(t *testing.T, rt *runtime) {
	t.Helper()
	assert.Nil(t, rt.backend)
	assert.Nil(t, rt.client)
	assert.Nil(t, rt.syncer)
	assert.Nil(t, rt.syncerOrNil())
	assert.False(t, rt.store.CloudLoading())

	_, err := rt.store.AddCustomer(context.Background(), models.Customer{Name: "Ali"})
	require.NoError(t, err)
	assert.Len(t, rt.store.Customers(), 1)
}

func TestOpenRuntimeFallsBackToLocalOnly(t *testing.T) {
	var migrated bool
	openMirror = func(context.Context, string, string, bool) (*remote.PostgresBackend, error) {
		return nil, errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	}
	migrateMirror = func(string) error {
		migrated = true
		return errors.New("connection refused")
	}
	t.Cleanup(func() {
		openMirror = remote.OpenPostgres
		migrateMirror = db.MigrateRemote
	})

	rt, err := openRuntime(context.Background(), unreachableConfig(t))
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	assert.True(t, migrated)
	assertLocalOnly(t, rt)
}

func TestOpenRuntimeWithUnreachablePostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for connection retries")
	}
	rt, err := openRuntime(context.Background(), unreachableConfig(t))
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	assertLocalOnly(t, rt)
}
