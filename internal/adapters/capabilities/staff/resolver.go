package staff

import (
	"context"
	"errors"
	"os"
	"strings"

	"pet-adoption-portal/internal/ports/capabilities"
)

// StaffLookup responde si un usuario es staff (accounts.Service lo implementa).
type StaffLookup interface {
	IsStaff(ctx context.Context, userID string) (bool, error)
}

// Resolver decide la capability de moderación: usuarios staff o ids configurados.
type Resolver struct {
	users    StaffLookup
	ids      map[string]struct{}
	allowAll bool
}

// NewResolver crea un resolver.
// Si ALLOW_ALL_CAPABILITIES=true (env), todo devuelve true (modo dev).
func NewResolver(users StaffLookup, moderatorIDs []string) *Resolver {
	ids := make(map[string]struct{}, len(moderatorIDs))
	for _, id := range moderatorIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = struct{}{}
		}
	}
	return &Resolver{
		users:    users,
		ids:      ids,
		allowAll: strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_CAPABILITIES")), "true"),
	}
}

func (r *Resolver) HasFeature(ctx context.Context, check capabilities.CapabilityCheck) (bool, error) {
	capability := strings.TrimSpace(check.Capability)
	if capability == "" {
		return false, errors.New("capability required")
	}
	userID := strings.TrimSpace(check.UserID)
	if userID == "" {
		return false, nil
	}
	if r.allowAll {
		return true, nil
	}
	if capability != capabilities.CapabilityModerate {
		return false, nil
	}

	if _, ok := r.ids[userID]; ok {
		return true, nil
	}
	if r.users == nil {
		return false, nil
	}
	return r.users.IsStaff(ctx, userID)
}
