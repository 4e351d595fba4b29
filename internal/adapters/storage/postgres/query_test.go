package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/domain/adoptions"
	"pet-adoption-portal/internal/domain/pets"
)

func TestBuildSearch_Empty(t *testing.T) {
	where, args := buildSearch(pets.Filter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildSearch_AllConditions(t *testing.T) {
	band := catalog.AgeBand{Min: 7, Max: 24}
	where, args := buildSearch(pets.Filter{
		Statuses: []pets.Status{pets.StatusAvailable},
		Text:     "50%",
		Species:  "gato",
		Sex:      "hembra",
		Age:      &band,
		City:     "bogota",
		Location: "chapinero",
	})

	assert.Equal(t, " WHERE status IN ($1)"+
		" AND (name ILIKE $2 OR breed ILIKE $2 OR description ILIKE $2 OR location ILIKE $2)"+
		" AND species = $3 AND sex = $4"+
		" AND age_months BETWEEN $5 AND $6"+
		" AND (city_norm = $7 OR location_norm LIKE $8)"+
		" AND location_norm LIKE $9", where)
	assert.Equal(t, []any{"available", `%50\%%`, "gato", "hembra", 7, 24, "bogota", "%bogota%", "%chapinero%"}, args)
}

func TestBuildSearch_RegionExpandsCities(t *testing.T) {
	engine := pets.NewEngine(&catalog.Catalog{
		Regions: []catalog.Region{{Key: "antioquia", Name: "Antioquia", Cities: []string{"Medellín", "Itagüí"}}},
	})
	f := engine.Resolve(pets.SearchParams{Region: "Antioquia"})

	where, args := buildSearch(f)
	assert.Equal(t, " WHERE (region_norm IN ($1) OR city_norm IN ($2,$3) OR location_norm LIKE $4 OR location_norm LIKE $5)", where)
	assert.Equal(t, []any{"antioquia", "medellin", "itagui", "%medellin%", "%itagui%"}, args)
}

func TestBuildSearch_UnknownRegionMatchesFieldOnly(t *testing.T) {
	where, args := buildSearch(pets.Filter{RegionTerms: []string{"narnia"}})
	assert.Equal(t, " WHERE (region_norm IN ($1))", where)
	assert.Equal(t, []any{"narnia"}, args)
}

func TestCreateAdoptionErr_OnlyPendingIndexIsDuplicate(t *testing.T) {
	err := createAdoptionErr(&pgconn.PgError{Code: "23505", ConstraintName: onePendingConstraint})
	assert.ErrorIs(t, err, adoptions.ErrDuplicatePending)

	err = createAdoptionErr(&pq.Error{Code: "23505", Constraint: onePendingConstraint})
	assert.ErrorIs(t, err, adoptions.ErrDuplicatePending)

	pk := &pgconn.PgError{Code: "23505", ConstraintName: "adoption_requests_pkey"}
	err = createAdoptionErr(pk)
	assert.NotErrorIs(t, err, adoptions.ErrDuplicatePending)
	assert.Same(t, pk, err)

	assert.NoError(t, createAdoptionErr(nil))
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%a\_b\%c\\d%`, containsPattern(`a_b%c\d`))
}

func TestUniqueConstraint(t *testing.T) {
	name, ok := uniqueConstraint(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"}))
	require.True(t, ok)
	assert.Equal(t, "users_email_lower_key", name)

	name, ok = uniqueConstraint(&pq.Error{Code: "23505", Constraint: "adoption_requests_one_pending_key"})
	require.True(t, ok)
	assert.Equal(t, "adoption_requests_one_pending_key", name)

	_, ok = uniqueConstraint(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)
	_, ok = uniqueConstraint(errors.New("boom"))
	assert.False(t, ok)
	_, ok = uniqueConstraint(nil)
	assert.False(t, ok)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "a.id, a.status", prefixed("a", "\n\tid,\n\tstatus"))
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrDSNMissing)

	_, err = Open(context.Background(), Options{Driver: "sqlite", DSN: "x"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
