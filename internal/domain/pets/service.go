package pets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pet-adoption-portal/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid status transition")
)

// Actor es quien ejecuta la operación.
type Actor struct {
	UserID    string
	Moderator bool
}

type Service struct {
	repo   Repository
	engine *Engine
	log    logger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, engine *Engine, opts ...Option) *Service {
	if engine == nil {
		engine = NewEngine(nil)
	}
	s := &Service{
		repo:   repo,
		engine: engine,
		log:    logger.Nop(),
		tracer: otel.Tracer("pet-adoption-portal/pets"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Engine() *Engine { return s.engine }

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	AgeMonths   int
	Sex         string
	Description string
	Location    string
	Region      string
	City        string
	PhotoKey    string
}

// NewPet arma una mascota disponible sin validar (la usan Create y la aprobación de publicaciones).
func NewPet(ownerUserID string, in CreateInput, now time.Time) Pet {
	return Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		AgeMonths:   in.AgeMonths,
		Sex:         strings.TrimSpace(in.Sex),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Region:      strings.TrimSpace(in.Region),
		City:        strings.TrimSpace(in.City),
		PhotoKey:    strings.TrimSpace(in.PhotoKey),
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Breed) == "" {
		return Pet{}, fmt.Errorf("%w: name and breed are required", ErrInvalidInput)
	}
	if !s.engine.cat.HasSpecies(strings.TrimSpace(in.Species)) {
		return Pet{}, fmt.Errorf("%w: unknown species %q", ErrInvalidInput, in.Species)
	}
	if !s.engine.cat.HasSex(strings.TrimSpace(in.Sex)) {
		return Pet{}, fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, in.Sex)
	}
	if in.AgeMonths < 0 {
		return Pet{}, fmt.Errorf("%w: age must be >= 0", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Location) == "" && strings.TrimSpace(in.City) == "" {
		return Pet{}, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	p := NewPet(ownerUserID, in, s.now())
	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}

	s.log.Info("pet created", map[string]any{"pet_id": p.ID, "owner_id": ownerUserID})
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// GetVisible oculta mascotas no disponibles salvo al responsable o a moderación.
func (s *Service) GetVisible(ctx context.Context, actor Actor, id string) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.Status != StatusAvailable && !p.OwnedBy(actor.UserID) && !actor.Moderator {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

// Search es el listado público: solo disponibles, más recientes primero.
func (s *Service) Search(ctx context.Context, params SearchParams) ([]Pet, error) {
	ctx, span := s.tracer.Start(ctx, "pets.search")
	defer span.End()

	f := s.engine.Resolve(params)
	f.Statuses = []Status{StatusAvailable}

	items, err := s.repo.Search(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("pets.results", len(items)))
	return items, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// ChangeStatus: responsable o moderación. Solo hacia adelante; moderación puede devolver a available.
func (s *Service) ChangeStatus(ctx context.Context, actor Actor, petID string, to Status) (Pet, error) {
	if !to.Valid() {
		return Pet{}, ErrInvalidInput
	}
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if !p.OwnedBy(actor.UserID) && !actor.Moderator {
		return Pet{}, ErrForbidden
	}
	if !canTransition(p.Status, to, actor.Moderator) {
		return Pet{}, ErrBadState
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, p.ID, []Status{p.Status}, to, now); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return Pet{}, ErrBadState
		}
		return Pet{}, err
	}

	s.log.Info("pet status changed", map[string]any{
		"pet_id": p.ID,
		"from":   string(p.Status),
		"to":     string(to),
		"by":     actor.UserID,
	})

	p.Status = to
	p.UpdatedAt = now
	return p, nil
}

func (s *Service) Locations(ctx context.Context) ([]string, error) {
	return s.repo.Locations(ctx)
}

var csvHeader = []string{
	"id", "nombre", "tipo", "raza", "edad_meses", "sexo", "ubicacion", "region", "ciudad",
	"estado", "responsable", "fecha_registro", "foto_path",
}

// ExportCSV escribe todas las mascotas (cualquier estado) que cumplan params.
func (s *Service) ExportCSV(ctx context.Context, params SearchParams, w io.Writer) (int, error) {
	f := s.engine.Resolve(params)
	items, err := s.repo.Search(ctx, f)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, p := range items {
		if err := cw.Write([]string{
			p.ID, p.Name, s.label(p.Species), p.Breed, strconv.Itoa(p.AgeMonths), p.Sex,
			p.Location, p.Region, p.City, string(p.Status), p.OwnerUserID,
			p.CreatedAt.UTC().Format(time.RFC3339), p.PhotoKey,
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(items), cw.Error()
}

func (s *Service) label(species string) string {
	for _, o := range s.engine.cat.Species {
		if o.Key == species {
			return o.Label
		}
	}
	return species
}
