package pets

// OwnedBy indica si userID es el responsable de la mascota.
// Lo usan pets y adoptions para no duplicar la regla.
func (p Pet) OwnedBy(userID string) bool {
	return userID != "" && p.OwnerUserID == userID
}

// Adoptable: solo mascotas disponibles reciben solicitudes.
func (p Pet) Adoptable() bool {
	return p.Status == StatusAvailable
}

// canTransition: solo hacia adelante (available -> reserved|adopted, reserved -> adopted).
// restore=true permite volver a available (acción de moderación).
func canTransition(from, to Status, restore bool) bool {
	if from == to {
		return false
	}
	switch {
	case from == StatusAvailable && (to == StatusReserved || to == StatusAdopted):
		return true
	case from == StatusReserved && to == StatusAdopted:
		return true
	case restore && to == StatusAvailable:
		return true
	}
	return false
}
