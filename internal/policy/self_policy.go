package policy

import (
	"context"

	gate "github.com/diewo77/kinz/go-gate"
	"github.com/diewo77/kinz/internal/models"
)

// SelfProtectPolicy stops users from deleting their own account or
// revoking their own user management. Other actions pass.
type SelfProtectPolicy struct{}

func NewSelfProtectPolicy() *SelfProtectPolicy {
	return &SelfProtectPolicy{}
}

func (p *SelfProtectPolicy) Can(_ context.Context, userID string, action gate.Action, resource any) bool {
	u, ok := resource.(models.User)
	if !ok {
		return false
	}
	if u.ID != userID {
		return true
	}
	switch action {
	case gate.ActionDelete:
		return false
	case gate.ActionUpdate:
		return u.Can(models.PermManageUsers)
	}
	return true
}
