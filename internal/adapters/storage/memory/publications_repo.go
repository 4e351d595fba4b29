package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/domain/publications"
)

type publicationRepo struct{ *Store }

func (r publicationRepo) Create(ctx context.Context, req publications.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("publish request id required")
	}
	if _, exists := r.publications[req.ID]; exists {
		return errors.New("publish request already exists")
	}
	r.publications[req.ID] = req
	return nil
}

func (r publicationRepo) GetByID(ctx context.Context, id string) (publications.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.publications[id]
	if !ok {
		return publications.Request{}, publications.ErrNotFound
	}
	return req, nil
}

func (r publicationRepo) ListBySubmitter(ctx context.Context, userID string) ([]publications.Request, error) {
	return r.list(func(req publications.Request) bool { return req.SubmitterID == userID }), nil
}

func (r publicationRepo) ListByStatus(ctx context.Context, status publications.Status) ([]publications.Request, error) {
	return r.list(func(req publications.Request) bool { return status == "" || req.Status == status }), nil
}

func (r publicationRepo) list(keep func(publications.Request) bool) []publications.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]publications.Request, 0)
	for _, req := range r.publications {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r publicationRepo) Approve(ctx context.Context, requestID string, pet pets.Pet, message string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.pendingPublication(requestID)
	if err != nil {
		return err
	}
	if err := r.insertPet(pet); err != nil {
		return err
	}

	req.Status = publications.StatusApproved
	req.ApprovalMessage = message
	req.PetID = pet.ID
	req.UpdatedAt = at
	req.ResolvedAt = &at
	r.publications[req.ID] = req
	return nil
}

func (r publicationRepo) Reject(ctx context.Context, requestID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.pendingPublication(requestID)
	if err != nil {
		return err
	}
	req.Status = publications.StatusRejected
	req.RejectionReason = reason
	req.UpdatedAt = at
	req.ResolvedAt = &at
	r.publications[req.ID] = req
	return nil
}

func (r publicationRepo) Cancel(ctx context.Context, requestID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.pendingPublication(requestID)
	if err != nil {
		return err
	}
	req.Status = publications.StatusCancelled
	req.UpdatedAt = at
	req.ResolvedAt = &at
	r.publications[req.ID] = req
	return nil
}

// pendingPublication asume el lock tomado.
func (r publicationRepo) pendingPublication(id string) (publications.Request, error) {
	req, ok := r.publications[id]
	if !ok {
		return publications.Request{}, publications.ErrNotFound
	}
	if req.Status != publications.StatusPending {
		return publications.Request{}, publications.ErrNotPending
	}
	return req, nil
}
