// Package gate is a small authorization library: profiles grant
// "resource:action" permissions (with wildcards) and optional per-resource
// policies narrow them for a concrete record. It has no dependency on the
// domain models.
package gate

import (
	"context"
	"fmt"
)

// HybridGate combines profile-based global permissions with resource-specific policies.
// Authorization flow:
//  1. Check if user is valid (non-zero)
//  2. Check if user's profile has the required permission (resource:action)
//  3. If a resource policy exists and resource is provided, check it
type HybridGate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// NewHybridGate creates a hybrid gate with the given profile resolver.
func NewHybridGate[U comparable](resolver ProfileResolver[U]) *HybridGate[U] {
	return &HybridGate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a resource-specific policy. Overwrites any existing policy
// for that type.
func (g *HybridGate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns nil when user may perform action. Denials wrap
// ErrUnauthorized; a user without a profile also matches ErrNoProfile.
func (g *HybridGate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	profile, err := g.profile(ctx, user)
	if err != nil {
		return err
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	if resource != nil {
		if policy, ok := g.policies[resourceType]; ok && !policy.Can(ctx, user, action, resource) {
			return ErrUnauthorized
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *HybridGate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, without policies.
// Useful before a specific resource is loaded.
func (g *HybridGate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.Authorize(ctx, user, action, resourceType, nil) == nil
}

func (g *HybridGate[U]) profile(ctx context.Context, user U) (Profile, error) {
	var zero U
	if user == zero {
		return nil, ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrNoProfile)
	}
	return profile, nil
}
