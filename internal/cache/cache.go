// Package cache is the durable local key-value store behind the domain store.
// Each collection is one JSON blob under one key.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/kinz/internal/logger"
)

// Prefix namespaces every key the application owns.
const Prefix = "kinz_"

// Entry is one cached blob.
type Entry struct {
	Key       string         `gorm:"column:cache_key;primaryKey;size:100"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "cache_entries" }

// Cache reads and writes JSON blobs by key.
type Cache struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens (or creates) the sqlite file at path. Use
// "file:<name>?mode=memory&cache=shared" for an in-memory cache.
func Open(path string, debug bool) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Gorm(debug)})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	return New(db)
}

// New wraps an existing gorm handle and migrates the cache table.
func New(db *gorm.DB) (*Cache, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return &Cache{db: db, log: logger.WithComponent("cache")}, nil
}

// Raw returns the stored bytes for key.
func (c *Cache) Raw(key string) ([]byte, bool, error) {
	var e Entry
	err := c.db.Where("cache_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

// Load decodes the blob under key into a value of type T. It never fails:
// a missing key, a read error or a corrupt blob yields def.
func Load[T any](c *Cache, key string, def T) T {
	raw, ok, err := c.Raw(key)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache read failed, using default")
		return def
	}
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return def
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to parse cached value, using default")
		return def
	}
	return out
}

// Save replaces the blob under key. Last write wins.
func (c *Cache) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	e := Entry{Key: key, Value: datatypes.JSON(data), UpdatedAt: time.Now()}
	err = c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SaveRaw stores bytes as-is; used to import blobs and by tests that need a
// corrupt entry.
func (c *Cache) SaveRaw(key string, data []byte) error {
	e := Entry{Key: key, Value: datatypes.JSON(data), UpdatedAt: time.Now()}
	return c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

// Delete removes key. Missing keys are not an error.
func (c *Cache) Delete(key string) error {
	return c.db.Where("cache_key = ?", key).Delete(&Entry{}).Error
}

// ClearPrefix removes every key starting with prefix.
func (c *Cache) ClearPrefix(prefix string) (int64, error) {
	res := c.db.Where("substr(cache_key, 1, ?) = ?", len(prefix), prefix).Delete(&Entry{})
	return res.RowsAffected, res.Error
}

// Keys lists stored keys in order.
func (c *Cache) Keys() ([]string, error) {
	var keys []string
	err := c.db.Model(&Entry{}).Order("cache_key").Pluck("cache_key", &keys).Error
	return keys, err
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
