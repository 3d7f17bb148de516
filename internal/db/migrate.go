// Package db owns the remote postgres schema and its connection bootstrap.
package db

import (
	"embed"
	"errors"
	"fmt"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres:// driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/diewo77/kinz/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	connectAttempts = 3
	connectBackoff  = time.Second
)

// Connect opens the remote database, retrying while postgres starts up.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	log := logger.WithComponent("db")
	var db *gorm.DB
	var err error
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Gorm(debug)})
		if err == nil || i == connectAttempts {
			break
		}
		log.Warn().Err(err).Int("attempt", i).Msg("remote connection failed, retrying")
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect remote: %w", err)
	}
	return db, nil
}

// MigrateRemote applies the embedded SQL migrations to the database at url
// (postgres:// form). Running it on an up-to-date schema is a no-op.
func MigrateRemote(url string) error {
	const op = "db.MigrateRemote"
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("%s: source: %w", op, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		log := logger.WithComponent("db")
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("remote schema ready")
	}
	return nil
}

// Migrations lists the embedded migration file names, in order.
func Migrations() ([]string, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// MigrationSQL returns the contents of one embedded migration file.
func MigrationSQL(name string) (string, error) {
	data, err := migrationFiles.ReadFile("migrations/" + name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
