package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption-portal/internal/domain/adoptions"
	"pet-adoption-portal/internal/domain/pets"
)

type AdoptionsRepo struct {
	db *sql.DB
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const adoptionColumns = `
	id, requester_id, pet_id,
	message, status, response,
	created_at, updated_at, resolved_at`

// Create: la violación del índice único parcial (una pendiente por requester+pet)
// vuelve como adoptions.ErrDuplicatePending.
func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_requests (
			id, requester_id, pet_id,
			message, status, response,
			created_at, updated_at, resolved_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		req.ID,
		req.RequesterID,
		req.PetID,
		req.Message,
		string(req.Status),
		req.Response,
		req.CreatedAt,
		req.UpdatedAt,
		toNullTime(req.ResolvedAt),
	)
	return createAdoptionErr(err)
}

const onePendingConstraint = "adoption_requests_one_pending_key"

// createAdoptionErr traduce solo la violación del índice de pendientes; otras
// violaciones de unicidad (p. ej. la PK) siguen como error.
func createAdoptionErr(err error) error {
	if constraint, ok := uniqueConstraint(err); ok && constraint == onePendingConstraint {
		return adoptions.ErrDuplicatePending
	}
	return err
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	req, err := scanAdoption(r.db.QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return adoptions.Request{}, adoptions.ErrNotFound
	}
	return req, err
}

func (r *AdoptionsRepo) FindPending(ctx context.Context, requesterID, petID string) (adoptions.Request, bool, error) {
	req, err := scanAdoption(r.db.QueryRowContext(ctx, `
		SELECT `+adoptionColumns+` FROM adoption_requests
		WHERE requester_id = $1 AND pet_id = $2 AND status = $3
	`, requesterID, petID, string(adoptions.StatusPending)))
	if errors.Is(err, sql.ErrNoRows) {
		return adoptions.Request{}, false, nil
	}
	if err != nil {
		return adoptions.Request{}, false, err
	}
	return req, true, nil
}

func (r *AdoptionsRepo) ListByRequester(ctx context.Context, requesterID string) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+adoptionColumns+` FROM adoption_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC, id DESC
	`, requesterID)
}

func (r *AdoptionsRepo) ListByPetOwner(ctx context.Context, ownerUserID string) ([]adoptions.Request, error) {
	return r.query(ctx, `
		SELECT `+prefixed("a", adoptionColumns)+`
		FROM adoption_requests a
		JOIN pets p ON p.id = a.pet_id
		WHERE p.owner_user_id = $1
		ORDER BY a.created_at DESC, a.id DESC
	`, ownerUserID)
}

// Resolve bloquea la solicitud, adopta la mascota si corresponde y cierra la solicitud,
// todo en una transacción.
func (r *AdoptionsRepo) Resolve(ctx context.Context, res adoptions.Resolution) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM adoption_requests WHERE id = $1 FOR UPDATE`, res.RequestID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return adoptions.ErrNotFound
		}
		if err != nil {
			return err
		}
		if adoptions.Status(status) != adoptions.StatusPending {
			return adoptions.ErrAlreadyResolved
		}

		if res.AdoptPetID != "" {
			err := updatePetStatus(ctx, tx, res.AdoptPetID,
				[]pets.Status{pets.StatusAvailable, pets.StatusReserved}, pets.StatusAdopted, res.At)
			if errors.Is(err, pets.ErrNotFound) || errors.Is(err, pets.ErrStatusConflict) {
				return adoptions.ErrPetUnavailable
			}
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE adoption_requests
			SET status = $2, response = $3, updated_at = $4, resolved_at = $4
			WHERE id = $1
		`, res.RequestID, string(res.Status), res.Response, res.At)
		return err
	})
}

func (r *AdoptionsRepo) query(ctx context.Context, q string, args ...any) ([]adoptions.Request, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.Request, 0)
	for rows.Next() {
		req, err := scanAdoption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanAdoption(s scanner) (adoptions.Request, error) {
	var req adoptions.Request
	var status string
	var resolved sql.NullTime
	if err := s.Scan(
		&req.ID,
		&req.RequesterID,
		&req.PetID,
		&req.Message,
		&status,
		&req.Response,
		&req.CreatedAt,
		&req.UpdatedAt,
		&resolved,
	); err != nil {
		return adoptions.Request{}, err
	}
	req.Status = adoptions.Status(status)
	req.ResolvedAt = fromNullTime(resolved)
	return req, nil
}
