package adoptions

import "time"

// Status del ciclo de vida: pending -> approved | rejected | cancelled.
// @Enum pending, approved, rejected, cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// ParseDecision traduce el campo "estado" del formulario de respuesta.
// Cualquier otro valor no es una decisión.
func ParseDecision(raw string) (Status, bool) {
	switch raw {
	case "aprobada", "approved":
		return StatusApproved, true
	case "rechazada", "rejected":
		return StatusRejected, true
	}
	return "", false
}

// Request es una solicitud de adopción de RequesterID sobre PetID.
type Request struct {
	ID          string
	RequesterID string
	PetID       string

	Message  string
	Status   Status
	Response string // respuesta del responsable, opcional

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// Resolution es el cambio de estado que el store aplica en una sola transacción.
// Si AdoptPetID no es vacío, la mascota pasa a adopted en la misma transacción.
type Resolution struct {
	RequestID  string
	Status     Status
	Response   string
	At         time.Time
	AdoptPetID string
}
