package publications

import (
	"context"
	"errors"
	"time"

	"pet-adoption-portal/internal/domain/pets"
)

var (
	ErrNotFound   = errors.New("publish request not found")
	ErrNotPending = errors.New("publish request already processed")
)

type Repository interface {
	Create(ctx context.Context, req Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	ListBySubmitter(ctx context.Context, userID string) ([]Request, error)
	// ListByStatus con status vacío lista todo. Más recientes primero.
	ListByStatus(ctx context.Context, status Status) ([]Request, error)

	// Approve inserta pet y marca la solicitud approved en una transacción.
	// ErrNotPending si ya no estaba pending (y no se inserta nada).
	Approve(ctx context.Context, requestID string, pet pets.Pet, message string, at time.Time) error
	Reject(ctx context.Context, requestID, reason string, at time.Time) error
	Cancel(ctx context.Context, requestID string, at time.Time) error
}
