package middleware

import (
	"context"
	"net/http"

	"pet-adoption-portal/internal/ports/auth"
	"pet-adoption-portal/internal/ports/capabilities"
)

// HasCapability devuelve false ante cualquier error del resolver.
func HasCapability(ctx context.Context, caps capabilities.CapabilitiesResolver, claims auth.Claims, capability string) bool {
	if caps == nil || claims.UserID == "" {
		return false
	}
	ok, err := caps.HasFeature(ctx, capabilities.CapabilityCheck{UserID: claims.UserID, Capability: capability})
	return err == nil && ok
}

// RequireCapability corta con 401 sin sesión y 403 sin la capability.
func RequireCapability(caps capabilities.CapabilitiesResolver, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !HasCapability(r.Context(), caps, claims, capability) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
