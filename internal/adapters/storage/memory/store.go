// Package memory es el store en memoria del portal (dev y tests).
// Todas las tablas comparten un único lock: las operaciones de varias filas
// (aprobar adopción, aprobar publicación) son atómicas sin más coordinación.
package memory

import (
	"sync"

	"pet-adoption-portal/internal/domain/accounts"
	"pet-adoption-portal/internal/domain/adoptions"
	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/domain/publications"
)

type Store struct {
	mu sync.RWMutex

	pets         map[string]pets.Pet
	adoptions    map[string]adoptions.Request
	publications map[string]publications.Request
	users        map[string]accounts.User
}

func New() *Store {
	return &Store{
		pets:         make(map[string]pets.Pet),
		adoptions:    make(map[string]adoptions.Request),
		publications: make(map[string]publications.Request),
		users:        make(map[string]accounts.User),
	}
}

func (s *Store) Pets() pets.Repository                 { return petRepo{s} }
func (s *Store) Adoptions() adoptions.Repository       { return adoptionRepo{s} }
func (s *Store) Publications() publications.Repository { return publicationRepo{s} }
func (s *Store) Users() accounts.Repository            { return userRepo{s} }
