package policy

import (
	"context"
	"errors"

	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/internal/store"
)

// UserSource looks users up by id. *store.Store satisfies it.
type UserSource interface {
	User(id string) (models.User, error)
}

// StoreProfileResolver resolves profiles from the users held by the store.
type StoreProfileResolver struct {
	Users UserSource
}

func NewStoreProfileResolver(users UserSource) *StoreProfileResolver {
	return &StoreProfileResolver{Users: users}
}

// Resolve returns nil for unknown and inactive users.
func (r *StoreProfileResolver) Resolve(_ context.Context, userID string) (gate.Profile, error) {
	u, err := r.Users.User(userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.Status != "" && u.Status != models.UserActive {
		return nil, nil
	}
	return ProfileFor(u), nil
}
