package capabilities

import "context"

// CapabilityModerate habilita la cola de moderación y las acciones masivas.
const CapabilityModerate = "portal:moderate"

type CapabilityCheck struct {
	UserID     string
	Capability string
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
