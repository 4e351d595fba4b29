package pets

import "time"

// Status es el estado de publicación de una mascota.
// @Enum available, reserved, adopted
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusAdopted   Status = "adopted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusAdopted:
		return true
	}
	return false
}

// ParseStatus acepta también los valores en castellano del formulario.
func ParseStatus(raw string) (Status, bool) {
	switch raw {
	case "available", "disponible":
		return StatusAvailable, true
	case "reserved", "reservado":
		return StatusReserved, true
	case "adopted", "adoptado":
		return StatusAdopted, true
	}
	return "", false
}

// Pet es una mascota publicada en el portal.
type Pet struct {
	ID          string
	OwnerUserID string

	Name        string
	Species     string // clave del catálogo (perro, gato, ...)
	Breed       string
	AgeMonths   int
	Sex         string // macho | hembra
	Description string

	Location string // texto libre
	Region   string
	City     string

	PhotoKey string // key en platform/blob, opcional

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
