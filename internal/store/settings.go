package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/remote"
)

func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings merges patch (keyed by JSON field name) over the current
// settings. The id always stays global.
func (s *Store) UpdateSettings(ctx context.Context, patch map[string]any) (models.Settings, error) {
	var out models.Settings
	err := s.apply(ctx, func(c *change) error {
		merged, err := mergeJSON(s.settings, patch)
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		var next models.Settings
		if err := json.Unmarshal(merged, &next); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		next.ID = models.SingletonID
		s.settings = next
		c.upsert(Settings, next)
		out = next
		return nil
	})
	return out, err
}

func (s *Store) ContractOptions() models.ContractOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contractOptions
}

// UpdateContractOptions replaces the pick lists.
func (s *Store) UpdateContractOptions(ctx context.Context, opts models.ContractOptions) error {
	return s.apply(ctx, func(c *change) error {
		opts.ID = models.SingletonID
		s.contractOptions = opts
		c.upsert(ContractOptions, opts)
		return nil
	})
}

func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.darkMode
}

func (s *Store) SetDarkMode(ctx context.Context, on bool) error {
	return s.apply(ctx, func(c *change) error {
		s.darkMode = on
		c.touch(Theme)
		return nil
	})
}

func mergeJSON(base any, patch map[string]any) ([]byte, error) {
	rec, err := remote.ToRecord(base)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		rec[k] = v
	}
	return json.Marshal(rec)
}
