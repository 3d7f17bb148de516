package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	gate "github.com/diewo77/kinz/go-gate"
)

func TestPermissionParse(t *testing.T) {
	res, act := gate.NewPermission("customer", gate.ActionCreate).Parse()
	assert.Equal(t, "customer", res)
	assert.Equal(t, gate.ActionCreate, act)

	res, act = gate.Permission("invalid").Parse()
	assert.Empty(t, res)
	assert.Empty(t, act)
}

func TestPermissionMatches(t *testing.T) {
	tests := []struct {
		held, requested gate.Permission
		want            bool
	}{
		{"customer:create", "customer:create", true},
		{"customer:create", "customer:delete", false},
		{"customer:*", "customer:delete", true},
		{"customer:*", "finance:view", false},
		{gate.PermissionSuperAdmin, "hr:manage", true},
		{"invalid", "invalid:view", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.held)+"/"+string(tt.requested), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.held.Matches(tt.requested))
		})
	}
}
