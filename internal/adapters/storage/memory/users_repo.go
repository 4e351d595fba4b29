package memory

import (
	"context"
	"errors"
	"strings"

	"pet-adoption-portal/internal/domain/accounts"
)

type userRepo struct{ *Store }

func (r userRepo) Create(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return accounts.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return accounts.ErrEmailTaken
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return accounts.User{}, accounts.ErrNotFound
	}
	return u, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (accounts.User, error) {
	return r.find(func(u accounts.User) bool { return strings.EqualFold(u.Username, strings.TrimSpace(username)) })
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (accounts.User, error) {
	return r.find(func(u accounts.User) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
}

func (r userRepo) find(match func(accounts.User) bool) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return accounts.User{}, accounts.ErrNotFound
}
