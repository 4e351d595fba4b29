package adoptions

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("adoption request not found")

	// ErrDuplicatePending lo devuelven los stores cuando la restricción única
	// (requester, pet) WHERE status = pending rechaza un insert.
	ErrDuplicatePending = errors.New("adoption request already pending")

	// ErrAlreadyResolved: la solicitud ya no está pendiente.
	ErrAlreadyResolved = errors.New("adoption request already resolved")

	// ErrPetUnavailable: al aprobar, la mascota ya no estaba disponible/reservada.
	ErrPetUnavailable = errors.New("pet is no longer available")
)

type Repository interface {
	Create(ctx context.Context, req Request) error
	GetByID(ctx context.Context, id string) (Request, error)

	// FindPending devuelve ok=false si no hay pendiente para (requester, pet).
	FindPending(ctx context.Context, requesterID, petID string) (Request, bool, error)

	ListByRequester(ctx context.Context, requesterID string) ([]Request, error)
	ListByPetOwner(ctx context.Context, ownerUserID string) ([]Request, error)

	// Resolve aplica la resolución de forma atómica:
	// ErrAlreadyResolved si la solicitud ya no estaba pending,
	// ErrPetUnavailable si AdoptPetID no se pudo marcar adopted (nada queda escrito).
	Resolve(ctx context.Context, res Resolution) error
}
