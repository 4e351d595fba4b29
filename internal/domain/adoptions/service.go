package adoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

const workflow = "adoption"

// PetLookup evita depender del repositorio de pets; *pets.Service lo cumple.
type PetLookup interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

// Recorder cuenta resultados del flujo (metrics.Metrics lo implementa).
type Recorder interface {
	RecordOutcome(workflow, outcome string)
}

type Service struct {
	repo   Repository
	pets   PetLookup
	log    logger.Logger
	rec    Recorder
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

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.rec = r }
}

func NewService(repo Repository, petLookup PetLookup, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		pets:   petLookup,
		log:    logger.Nop(),
		tracer: otel.Tracer("pet-adoption-portal/adoptions"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateResult struct {
	Request Request
	// AlreadyPending: ya existía una pendiente para (requester, pet); no se creó nada.
	AlreadyPending bool
}

// Create registra una solicitud pendiente.
// La mascota debe existir y estar disponible (si no, ErrNotFound) y no ser del solicitante (ErrForbidden).
// Un duplicado, detectado antes o por la restricción única del store, no es error.
func (s *Service) Create(ctx context.Context, requesterID, petID, message string) (CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "adoptions.create", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	requesterID = strings.TrimSpace(requesterID)
	petID = strings.TrimSpace(petID)
	if requesterID == "" || petID == "" {
		return CreateResult{}, ErrInvalidInput
	}

	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return CreateResult{}, ErrNotFound
		}
		return CreateResult{}, s.fail(span, err)
	}
	if !p.Adoptable() {
		return CreateResult{}, ErrNotFound
	}
	if p.OwnedBy(requesterID) {
		s.record("forbidden_own_pet")
		return CreateResult{}, ErrForbidden
	}

	if existing, ok, err := s.repo.FindPending(ctx, requesterID, petID); err != nil {
		return CreateResult{}, s.fail(span, err)
	} else if ok {
		s.record("already_pending")
		return CreateResult{Request: existing, AlreadyPending: true}, nil
	}

	now := s.now()
	req := Request{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		PetID:       petID,
		Message:     strings.TrimSpace(message),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; ; attempt++ {
		err := s.repo.Create(ctx, req)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicatePending) {
			return CreateResult{}, s.fail(span, err)
		}
		// Carrera con otra solicitud idéntica: la restricción única ganó.
		existing, ok, ferr := s.repo.FindPending(ctx, requesterID, petID)
		if ferr != nil {
			return CreateResult{}, s.fail(span, ferr)
		}
		if ok {
			s.record("already_pending")
			return CreateResult{Request: existing, AlreadyPending: true}, nil
		}
		// La pendiente que chocó ya se resolvió; se reintenta una vez.
		if attempt > 0 {
			return CreateResult{}, s.fail(span, fmt.Errorf("adoptions: pending request conflict without a pending row: %v", err))
		}
	}

	s.record("created")
	s.log.Info("adoption request created", map[string]any{
		"request_id":   req.ID,
		"pet_id":       petID,
		"requester_id": requesterID,
	})
	return CreateResult{Request: req}, nil
}

type RespondResult struct {
	Request Request
	// Changed=false cuando la decisión no es válida: se devuelve el estado actual sin tocar nada.
	Changed bool
}

// Respond: solo el responsable de la mascota. Aprobar marca la mascota adopted en la misma transacción.
func (s *Service) Respond(ctx context.Context, responderID, requestID, decision, response string) (RespondResult, error) {
	ctx, span := s.tracer.Start(ctx, "adoptions.respond", trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	req, _, err := s.GetForResponder(ctx, responderID, requestID)
	if err != nil {
		return RespondResult{}, err
	}

	status, ok := ParseDecision(strings.TrimSpace(decision))
	if !ok {
		return RespondResult{Request: req, Changed: false}, nil
	}
	if req.Status != StatusPending {
		s.record("already_resolved")
		return RespondResult{Request: req}, ErrAlreadyResolved
	}

	now := s.now()
	res := Resolution{
		RequestID: req.ID,
		Status:    status,
		Response:  strings.TrimSpace(response),
		At:        now,
	}
	if status == StatusApproved {
		res.AdoptPetID = req.PetID
	}

	if err := s.repo.Resolve(ctx, res); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyResolved):
			s.record("already_resolved")
			return RespondResult{Request: req}, ErrAlreadyResolved
		case errors.Is(err, ErrPetUnavailable):
			s.record("pet_unavailable")
			return RespondResult{Request: req}, ErrPetUnavailable
		default:
			return RespondResult{}, s.fail(span, err)
		}
	}

	req.Status = status
	req.Response = res.Response
	req.UpdatedAt = now
	req.ResolvedAt = &now

	s.record(string(status))
	s.log.Info("adoption request resolved", map[string]any{
		"request_id": req.ID,
		"pet_id":     req.PetID,
		"status":     string(status),
		"by":         responderID,
	})
	return RespondResult{Request: req, Changed: true}, nil
}

// Cancel: el solicitante retira una solicitud pendiente.
func (s *Service) Cancel(ctx context.Context, requesterID, requestID string) (Request, error) {
	req, err := s.GetDetail(ctx, requesterID, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return req, ErrAlreadyResolved
	}

	now := s.now()
	if err := s.repo.Resolve(ctx, Resolution{RequestID: req.ID, Status: StatusCancelled, At: now}); err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return req, ErrAlreadyResolved
		}
		return Request{}, err
	}

	req.Status = StatusCancelled
	req.UpdatedAt = now
	req.ResolvedAt = &now
	s.record("cancelled")
	return req, nil
}

// ListOwn: solicitudes del usuario como solicitante, más recientes primero.
func (s *Service) ListOwn(ctx context.Context, userID string) ([]Request, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRequester(ctx, userID)
}

// ListReceived: solicitudes sobre mascotas de las que ownerID es responsable.
func (s *Service) ListReceived(ctx context.Context, ownerID string) ([]Request, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPetOwner(ctx, ownerID)
}

// GetDetail: vista del solicitante. Una solicitud ajena es ErrNotFound (no se revela que existe).
func (s *Service) GetDetail(ctx context.Context, userID, requestID string) (Request, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.RequesterID != strings.TrimSpace(userID) {
		return Request{}, ErrNotFound
	}
	return req, nil
}

// GetForResponder: vista del responsable de la mascota.
func (s *Service) GetForResponder(ctx context.Context, ownerID, requestID string) (Request, pets.Pet, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return Request{}, pets.Pet{}, err
	}
	p, err := s.pets.GetByID(ctx, req.PetID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return Request{}, pets.Pet{}, ErrNotFound
		}
		return Request{}, pets.Pet{}, err
	}
	if !p.OwnedBy(strings.TrimSpace(ownerID)) {
		return Request{}, pets.Pet{}, ErrForbidden
	}
	return req, p, nil
}

func (s *Service) get(ctx context.Context, requestID string) (Request, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return Request{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, requestID)
}

func (s *Service) record(outcome string) {
	if s.rec != nil {
		s.rec.RecordOutcome(workflow, outcome)
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Error("adoption workflow failed", map[string]any{"err": err})
	return fmt.Errorf("adoptions: %w", err)
}
