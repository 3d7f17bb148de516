package store

import (
	"errors"
	"sort"
	"strings"

	"github.com/diewo77/kinz/validation"
)

// ErrNotFound is returned by lookups. Mutations on missing ids are silent
// no-ops and never return it.
var ErrNotFound = errors.New("not found")

// ValidationError rejects an operation before any state changes.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e.Violations[f]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}
