package pets

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("pet not found")
	ErrStatusConflict = errors.New("pet status changed concurrently")
)

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)

	// Search devuelve las mascotas que cumplen f, más recientes primero.
	Search(ctx context.Context, f Filter) ([]Pet, error)

	// UpdateStatus cambia el estado solo si el actual está en from.
	// ErrNotFound si no existe, ErrStatusConflict si el estado ya no es ninguno de from.
	UpdateStatus(ctx context.Context, id string, from []Status, to Status, at time.Time) error

	// Locations: ubicaciones distintas de mascotas disponibles (para el combo de la home).
	Locations(ctx context.Context) ([]string, error)
}
