package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption-portal/internal/domain/adoptions"
	"pet-adoption-portal/internal/domain/pets"
)

type adoptionRepo struct{ *Store }

// Create aplica la misma regla que el índice único parcial de Postgres:
// una sola pendiente por (requester, pet).
func (r adoptionRepo) Create(ctx context.Context, req adoptions.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("adoption request id required")
	}
	if _, exists := r.adoptions[req.ID]; exists {
		return errors.New("adoption request already exists")
	}
	if req.Status == adoptions.StatusPending {
		for _, existing := range r.adoptions {
			if existing.Status == adoptions.StatusPending &&
				existing.RequesterID == req.RequesterID &&
				existing.PetID == req.PetID {
				return adoptions.ErrDuplicatePending
			}
		}
	}
	r.adoptions[req.ID] = req
	return nil
}

func (r adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.adoptions[id]
	if !ok {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	return req, nil
}

func (r adoptionRepo) FindPending(ctx context.Context, requesterID, petID string) (adoptions.Request, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.adoptions {
		if req.Status == adoptions.StatusPending && req.RequesterID == requesterID && req.PetID == petID {
			return req, true, nil
		}
	}
	return adoptions.Request{}, false, nil
}

func (r adoptionRepo) ListByRequester(ctx context.Context, requesterID string) ([]adoptions.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Request, 0)
	for _, req := range r.adoptions {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	sortRequests(out)
	return out, nil
}

func (r adoptionRepo) ListByPetOwner(ctx context.Context, ownerUserID string) ([]adoptions.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Request, 0)
	for _, req := range r.adoptions {
		if p, ok := r.pets[req.PetID]; ok && p.OwnerUserID == ownerUserID {
			out = append(out, req)
		}
	}
	sortRequests(out)
	return out, nil
}

func (r adoptionRepo) Resolve(ctx context.Context, res adoptions.Resolution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.adoptions[res.RequestID]
	if !ok {
		return adoptions.ErrNotFound
	}
	if req.Status != adoptions.StatusPending {
		return adoptions.ErrAlreadyResolved
	}

	// La mascota primero: si falla, la solicitud queda intacta.
	if res.AdoptPetID != "" {
		err := r.setPetStatus(res.AdoptPetID, []pets.Status{pets.StatusAvailable, pets.StatusReserved}, pets.StatusAdopted, res.At)
		if err != nil {
			return adoptions.ErrPetUnavailable
		}
	}

	at := res.At
	req.Status = res.Status
	req.Response = res.Response
	req.UpdatedAt = at
	req.ResolvedAt = &at
	r.adoptions[req.ID] = req
	return nil
}

func sortRequests(items []adoptions.Request) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
