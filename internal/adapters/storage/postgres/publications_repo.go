package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/domain/publications"
)

type PublicationsRepo struct {
	db *sql.DB
}

func NewPublicationsRepo(db *sql.DB) *PublicationsRepo {
	return &PublicationsRepo{db: db}
}

const publicationColumns = `
	id, submitter_id,
	name, species, breed, age_months, sex,
	description, location, region, city, photo_key,
	contact_name, contact_email, contact_address, contact_phone, consent,
	status, rejection_reason, approval_message, pet_id,
	created_at, updated_at, resolved_at`

func (r *PublicationsRepo) Create(ctx context.Context, req publications.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO publish_requests (`+publicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`,
		req.ID,
		req.SubmitterID,
		req.Pet.Name,
		req.Pet.Species,
		req.Pet.Breed,
		req.Pet.AgeMonths,
		req.Pet.Sex,
		req.Pet.Description,
		req.Pet.Location,
		req.Pet.Region,
		req.Pet.City,
		req.Pet.PhotoKey,
		req.Contact.Name,
		req.Contact.Email,
		req.Contact.Address,
		req.Contact.Phone,
		req.Consent,
		string(req.Status),
		req.RejectionReason,
		req.ApprovalMessage,
		toNullString(req.PetID),
		req.CreatedAt,
		req.UpdatedAt,
		toNullTime(req.ResolvedAt),
	)
	return err
}

func (r *PublicationsRepo) GetByID(ctx context.Context, id string) (publications.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return publications.Request{}, publications.ErrNotFound
	}
	req, err := scanPublication(r.db.QueryRowContext(ctx, `SELECT `+publicationColumns+` FROM publish_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return publications.Request{}, publications.ErrNotFound
	}
	return req, err
}

func (r *PublicationsRepo) ListBySubmitter(ctx context.Context, userID string) ([]publications.Request, error) {
	return r.query(ctx, `
		SELECT `+publicationColumns+` FROM publish_requests
		WHERE submitter_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
}

func (r *PublicationsRepo) ListByStatus(ctx context.Context, status publications.Status) ([]publications.Request, error) {
	if status == "" {
		return r.query(ctx, `SELECT `+publicationColumns+` FROM publish_requests ORDER BY created_at DESC, id DESC`)
	}
	return r.query(ctx, `
		SELECT `+publicationColumns+` FROM publish_requests
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
	`, string(status))
}

// Approve marca la solicitud y crea la mascota en la misma transacción.
func (r *PublicationsRepo) Approve(ctx context.Context, requestID string, pet pets.Pet, message string, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPending(ctx, tx, requestID); err != nil {
			return err
		}
		if err := insertPet(ctx, tx, pet); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE publish_requests
			SET status = $2, approval_message = $3, pet_id = $4, updated_at = $5, resolved_at = $5
			WHERE id = $1
		`, requestID, string(publications.StatusApproved), message, pet.ID, at)
		return err
	})
}

func (r *PublicationsRepo) Reject(ctx context.Context, requestID, reason string, at time.Time) error {
	return r.close(ctx, requestID, publications.StatusRejected, reason, at)
}

func (r *PublicationsRepo) Cancel(ctx context.Context, requestID string, at time.Time) error {
	return r.close(ctx, requestID, publications.StatusCancelled, "", at)
}

func (r *PublicationsRepo) close(ctx context.Context, requestID string, to publications.Status, reason string, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPending(ctx, tx, requestID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE publish_requests
			SET status = $2, rejection_reason = $3, updated_at = $4, resolved_at = $4
			WHERE id = $1
		`, requestID, string(to), reason, at)
		return err
	})
}

// lockPending toma la fila con FOR UPDATE y exige que siga pending.
func lockPending(ctx context.Context, tx *sql.Tx, id string) error {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM publish_requests WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return publications.ErrNotFound
	}
	if err != nil {
		return err
	}
	if publications.Status(status) != publications.StatusPending {
		return publications.ErrNotPending
	}
	return nil
}

func (r *PublicationsRepo) query(ctx context.Context, q string, args ...any) ([]publications.Request, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]publications.Request, 0)
	for rows.Next() {
		req, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanPublication(s scanner) (publications.Request, error) {
	var req publications.Request
	var status string
	var petID sql.NullString
	var resolved sql.NullTime
	if err := s.Scan(
		&req.ID,
		&req.SubmitterID,
		&req.Pet.Name,
		&req.Pet.Species,
		&req.Pet.Breed,
		&req.Pet.AgeMonths,
		&req.Pet.Sex,
		&req.Pet.Description,
		&req.Pet.Location,
		&req.Pet.Region,
		&req.Pet.City,
		&req.Pet.PhotoKey,
		&req.Contact.Name,
		&req.Contact.Email,
		&req.Contact.Address,
		&req.Contact.Phone,
		&req.Consent,
		&status,
		&req.RejectionReason,
		&req.ApprovalMessage,
		&petID,
		&req.CreatedAt,
		&req.UpdatedAt,
		&resolved,
	); err != nil {
		return publications.Request{}, err
	}
	req.Status = publications.Status(status)
	req.PetID = petID.String
	req.ResolvedAt = fromNullTime(resolved)
	return req, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
