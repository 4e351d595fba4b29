package auth

// Claims representa la información extraída de la sesión o del token.
type Claims struct {
	UserID   string
	Username string
	Email    string
}
