// Package handlers exposes the store as a JSON API.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/logger"
	"github.com/diewo77/kinz/internal/services"
	"github.com/diewo77/kinz/internal/store"
	"github.com/diewo77/kinz/internal/syncer"
)

// Authorizer checks the request user against a concrete record.
// *policy.AuthGate satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error
}

// Syncer runs one startup-style sync pass on demand and owns the factory
// reset while the remote is attached.
type Syncer interface {
	Sync(ctx context.Context) []syncer.Outcome
	FactoryReset(ctx context.Context) error
}

// Handler serves every API area over one store.
type Handler struct {
	Store    *store.Store
	Gate     Authorizer
	Sync     Syncer // nil in local-only mode
	Invoices *services.InvoiceService
	log      zerolog.Logger
}

func New(s *store.Store, g Authorizer, sync Syncer, log *zerolog.Logger) *Handler {
	h := &Handler{Store: s, Gate: g, Sync: sync, Invoices: services.NewInvoiceService(s)}
	if log != nil {
		h.log = *log
	} else {
		h.log = logger.WithComponent("handlers")
	}
	return h
}

// decode reads the JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.Decode(r, v); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

// fail maps store errors to responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, store.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		h.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
