package publications

import (
	"time"

	"pet-adoption-portal/internal/domain/pets"
)

// Status: pending -> approved | rejected | cancelled, una sola vez.
// @Enum pending, approved, rejected, cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ParseStatus acepta también los valores en castellano (?estado=pendiente).
func ParseStatus(raw string) (Status, bool) {
	switch raw {
	case "pending", "pendiente":
		return StatusPending, true
	case "approved", "aprobada":
		return StatusApproved, true
	case "rejected", "rechazada":
		return StatusRejected, true
	case "cancelled", "cancelada":
		return StatusCancelled, true
	}
	return "", false
}

// ApprovalMessage es el texto fijo que ve el usuario cuando se aprueba su publicación.
const ApprovalMessage = "Tu solicitud fue aprobada. La mascota ya está publicada en el portal."

type Contact struct {
	Name    string
	Email   string
	Address string
	Phone   string
}

// Request es una solicitud para publicar una mascota. Pet lleva los atributos propuestos.
type Request struct {
	ID          string
	SubmitterID string

	Pet     pets.CreateInput
	Contact Contact
	Consent bool

	Status          Status
	RejectionReason string // solo si rejected
	ApprovalMessage string // solo si approved
	PetID           string // mascota creada al aprobar

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}
