package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pet-adoption-portal/internal/domain/pets"
)

type petRepo struct{ *Store }

func (r petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertPet(p)
}

// insertPet asume el lock tomado.
func (s *Store) insertPet(p pets.Pet) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	s.pets[p.ID] = p
	return nil
}

func (r petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.pets {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	pets.SortNewestFirst(out)
	return out, nil
}

func (r petRepo) Search(ctx context.Context, f pets.Filter) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.pets {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	pets.SortNewestFirst(out)
	return out, nil
}

func (r petRepo) UpdateStatus(ctx context.Context, id string, from []pets.Status, to pets.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setPetStatus(id, from, to, at)
}

// setPetStatus asume el lock tomado.
func (s *Store) setPetStatus(id string, from []pets.Status, to pets.Status, at time.Time) error {
	p, ok := s.pets[id]
	if !ok {
		return pets.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if p.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return pets.ErrStatusConflict
	}
	p.Status = to
	p.UpdatedAt = at
	s.pets[id] = p
	return nil
}

func (r petRepo) Locations(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, p := range r.pets {
		loc := strings.TrimSpace(p.Location)
		if p.Status != pets.StatusAvailable || loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	sort.Strings(out)
	return out, nil
}
