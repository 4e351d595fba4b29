package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption-portal/internal/domain/accounts"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, username, email, password_hash, password_salt, staff, created_at`

func (r *UsersRepo) Create(ctx context.Context, u accounts.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.PasswordSalt, u.Staff, u.CreatedAt)

	if constraint, ok := uniqueConstraint(err); ok {
		if strings.Contains(constraint, "email") {
			return accounts.ErrEmailTaken
		}
		return accounts.ErrUsernameTaken
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, strings.TrimSpace(id))
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (accounts.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, strings.TrimSpace(username))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (accounts.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *UsersRepo) getOne(ctx context.Context, q, arg string) (accounts.User, error) {
	if arg == "" {
		return accounts.User{}, accounts.ErrNotFound
	}
	var u accounts.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.PasswordSalt,
		&u.Staff,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return accounts.User{}, accounts.ErrNotFound
	}
	if err != nil {
		return accounts.User{}, err
	}
	return u, nil
}
