//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/domain/accounts"
	"pet-adoption-portal/internal/domain/adoptions"
	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/domain/publications"
)

// setupTestDB levanta un Postgres efímero y aplica el esquema.
func setupTestDB(t *testing.T, driver string) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("portal"),
		tcpostgres.WithUsername("portal"),
		tcpostgres.WithPassword("portal"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, Options{Driver: driver, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrate must be idempotent")
	return db
}

func newPet(id, owner string, at time.Time, mutate func(*pets.Pet)) pets.Pet {
	p := pets.Pet{
		ID: id, OwnerUserID: owner, Name: "Pet " + id, Species: "perro", Breed: "Criollo",
		AgeMonths: 10, Sex: "macho", Location: "Bogotá", Status: pets.StatusAvailable,
		CreatedAt: at, UpdatedAt: at,
	}
	if mutate != nil {
		mutate(&p)
	}
	return p
}

func TestIntegration_Drivers(t *testing.T) {
	for _, driver := range []string{"pgx", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			db := setupTestDB(t, driver)
			ctx := context.Background()
			t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

			petsRepo := NewPetsRepo(db)
			require.NoError(t, petsRepo.Create(ctx, newPet("chia", "o1", t0, func(p *pets.Pet) { p.Location = "Centro, Chía" })))
			require.NoError(t, petsRepo.Create(ctx, newPet("region", "o1", t0.Add(time.Minute), func(p *pets.Pet) { p.Location = "Finca"; p.Region = "Cundinamarca" })))
			require.NoError(t, petsRepo.Create(ctx, newPet("cali", "o1", t0.Add(2*time.Minute), func(p *pets.Pet) { p.Location = "Cali"; p.AgeMonths = 30 })))

			engine := pets.NewEngine(catalog.Default())
			f := engine.Resolve(pets.SearchParams{Region: "cundinamarca"})
			f.Statuses = []pets.Status{pets.StatusAvailable}
			got, err := petsRepo.Search(ctx, f)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "region", got[0].ID, "newest first")

			got, err = petsRepo.Search(ctx, engine.Resolve(pets.SearchParams{AgeRange: "2"}))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "cali", got[0].ID)

			// Adopciones concurrentes: el índice único deja una sola pendiente.
			svc := adoptions.NewService(NewAdoptionsRepo(db), petsRepo)
			var g errgroup.Group
			for i := 0; i < 8; i++ {
				i := i
				g.Go(func() error {
					_, err := svc.Create(ctx, "u1", "cali", fmt.Sprintf("hola %d", i))
					return err
				})
			}
			require.NoError(t, g.Wait())
			own, err := svc.ListOwn(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, own, 1)

			res, err := svc.Respond(ctx, "o1", own[0].ID, "aprobada", "¡Es tuya!")
			require.NoError(t, err)
			assert.True(t, res.Changed)
			p, err := petsRepo.GetByID(ctx, "cali")
			require.NoError(t, err)
			assert.Equal(t, pets.StatusAdopted, p.Status)

			// Publicación aprobada = una mascota disponible.
			pubRepo := NewPublicationsRepo(db)
			req := publications.Request{
				ID: "pr-" + driver, SubmitterID: "u2", Status: publications.StatusPending, Consent: true,
				Pet:       pets.CreateInput{Name: "Luna", Species: "gato", Breed: "Criolla", Sex: "hembra", Location: "Cali", PhotoKey: "mascotas/x.jpg"},
				Contact:   publications.Contact{Name: "Ana", Email: "ana@example.com", Address: "Calle 1", Phone: "3001234567"},
				CreatedAt: t0, UpdatedAt: t0,
			}
			require.NoError(t, pubRepo.Create(ctx, req))
			np := pets.NewPet("u2", req.Pet, t0)
			require.NoError(t, pubRepo.Approve(ctx, req.ID, np, publications.ApprovalMessage, t0))
			assert.ErrorIs(t, pubRepo.Approve(ctx, req.ID, pets.NewPet("u2", req.Pet, t0), publications.ApprovalMessage, t0), publications.ErrNotPending)
			mine, err := petsRepo.ListByOwner(ctx, "u2")
			require.NoError(t, err)
			assert.Len(t, mine, 1)

			// Usuarios: unicidad sin mayúsculas.
			users := NewUsersRepo(db)
			require.NoError(t, users.Create(ctx, accounts.User{ID: "a", Username: "Ana", Email: "ana@example.com", PasswordHash: "h", PasswordSalt: "s", CreatedAt: t0}))
			assert.ErrorIs(t, users.Create(ctx, accounts.User{ID: "b", Username: "ANA", Email: "b@example.com", PasswordHash: "h", PasswordSalt: "s", CreatedAt: t0}), accounts.ErrUsernameTaken)
			assert.ErrorIs(t, users.Create(ctx, accounts.User{ID: "c", Username: "otra", Email: "ANA@example.com", PasswordHash: "h", PasswordSalt: "s", CreatedAt: t0}), accounts.ErrEmailTaken)
			u, err := users.GetByEmail(ctx, "Ana@Example.COM")
			require.NoError(t, err)
			assert.Equal(t, "a", u.ID)
		})
	}
}
