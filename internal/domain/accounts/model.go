package accounts

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	PasswordSalt string
	Staff        bool
	CreatedAt    time.Time
}
