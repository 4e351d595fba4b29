package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/platform/textnorm"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_user_id,
	name, species, breed, age_months, sex,
	description, location, region, city, photo_key,
	status, created_at, updated_at`

// execer cubre *sql.DB y *sql.Tx para poder insertar dentro de una transacción.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	return insertPet(ctx, r.db, p)
}

func insertPet(ctx context.Context, db execer, p pets.Pet) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pets (
			id, owner_user_id,
			name, species, breed, age_months, sex,
			description, location, region, city, photo_key,
			location_norm, region_norm, city_norm,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Species,
		p.Breed,
		p.AgeMonths,
		p.Sex,
		p.Description,
		p.Location,
		p.Region,
		p.City,
		p.PhotoKey,
		textnorm.Fold(p.Location),
		textnorm.Fold(p.Region),
		textnorm.Fold(p.City),
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_user_id = $1 ORDER BY created_at DESC, id DESC`, ownerUserID)
}

func (r *PetsRepo) Search(ctx context.Context, f pets.Filter) ([]pets.Pet, error) {
	where, args := buildSearch(f)
	return r.query(ctx, `SELECT `+petColumns+` FROM pets`+where+` ORDER BY created_at DESC, id DESC`, args...)
}

// buildSearch traduce pets.Filter a WHERE con placeholders $N.
// Las columnas *_norm guardan el valor plegado (sin tildes, minúsculas), igual que los términos del filtro.
func buildSearch(f pets.Filter) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Statuses) > 0 {
		ph := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			ph = append(ph, next(string(s)))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ",")+")")
	}

	if f.Text != "" {
		p := next(containsPattern(f.Text))
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR breed ILIKE %[1]s OR description ILIKE %[1]s OR location ILIKE %[1]s)", p))
	}
	if f.Species != "" {
		conds = append(conds, "species = "+next(f.Species))
	}
	if f.Sex != "" {
		conds = append(conds, "sex = "+next(f.Sex))
	}
	if f.Age != nil {
		conds = append(conds, fmt.Sprintf("age_months BETWEEN %s AND %s", next(f.Age.Min), next(f.Age.Max)))
	}

	if f.City != "" {
		conds = append(conds, fmt.Sprintf("(city_norm = %s OR location_norm LIKE %s)", next(f.City), next(containsPattern(f.City))))
	} else if len(f.RegionTerms) > 0 {
		var or []string
		terms := make([]string, 0, len(f.RegionTerms))
		for _, t := range f.RegionTerms {
			terms = append(terms, next(t))
		}
		or = append(or, "region_norm IN ("+strings.Join(terms, ",")+")")
		if len(f.RegionCities) > 0 {
			cities := make([]string, 0, len(f.RegionCities))
			for _, c := range f.RegionCities {
				cities = append(cities, next(c))
			}
			or = append(or, "city_norm IN ("+strings.Join(cities, ",")+")")
			for _, c := range f.RegionCities {
				or = append(or, "location_norm LIKE "+next(containsPattern(c)))
			}
		}
		conds = append(conds, "("+strings.Join(or, " OR ")+")")
	}

	if f.Location != "" {
		conds = append(conds, "location_norm LIKE "+next(containsPattern(f.Location)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PetsRepo) UpdateStatus(ctx context.Context, id string, from []pets.Status, to pets.Status, at time.Time) error {
	return updatePetStatus(ctx, r.db, id, from, to, at)
}

type queryExecer interface {
	execer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func updatePetStatus(ctx context.Context, db queryExecer, id string, from []pets.Status, to pets.Status, at time.Time) error {
	if len(from) == 0 {
		return pets.ErrStatusConflict
	}
	args := []any{id, string(to), at}
	ph := make([]string, 0, len(from))
	for _, s := range from {
		args = append(args, string(s))
		ph = append(ph, fmt.Sprintf("$%d", len(args)))
	}

	res, err := db.ExecContext(ctx, `
		UPDATE pets SET status = $2, updated_at = $3
		WHERE id = $1 AND status IN (`+strings.Join(ph, ",")+`)
	`, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pets.ErrNotFound
	}
	return pets.ErrStatusConflict
}

func (r *PetsRepo) Locations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT location FROM pets
		WHERE status = $1 AND location <> ''
		ORDER BY location
	`, string(pets.StatusAvailable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *PetsRepo) query(ctx context.Context, q string, args ...any) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (pets.Pet, error) {
	var p pets.Pet
	var status string
	err := s.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.AgeMonths,
		&p.Sex,
		&p.Description,
		&p.Location,
		&p.Region,
		&p.City,
		&p.PhotoKey,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.Status = pets.Status(status)
	return p, err
}
