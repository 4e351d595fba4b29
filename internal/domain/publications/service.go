package publications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const workflow = "publication"

// Recorder cuenta resultados del flujo (metrics.Metrics lo implementa).
type Recorder interface {
	RecordOutcome(workflow, outcome string)
}

type Service struct {
	repo   Repository
	cat    *catalog.Catalog
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

func NewService(repo Repository, cat *catalog.Catalog, opts ...Option) *Service {
	if cat == nil {
		cat = catalog.Default()
	}
	s := &Service{
		repo:   repo,
		cat:    cat,
		log:    logger.Nop(),
		tracer: otel.Tracer("pet-adoption-portal/publications"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// Submit valida el formulario y guarda la solicitud pendiente.
// Devuelve *ValidationError con los mensajes por campo.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (Request, error) {
	ctx, span := s.tracer.Start(ctx, "publications.submit")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Request{}, ErrInvalidInput
	}

	age, verr := validate(in, s.cat)
	if verr != nil {
		s.record("invalid")
		return Request{}, verr
	}

	now := s.now()
	req := Request{
		ID:          uuid.NewString(),
		SubmitterID: userID,
		Pet: pets.CreateInput{
			Name:        strings.TrimSpace(in.Name),
			Species:     strings.TrimSpace(in.Species),
			Breed:       strings.TrimSpace(in.Breed),
			AgeMonths:   age,
			Sex:         strings.TrimSpace(in.Sex),
			Description: strings.TrimSpace(in.Description),
			Location:    strings.TrimSpace(in.Location),
			Region:      strings.TrimSpace(in.Region),
			City:        strings.TrimSpace(in.City),
			PhotoKey:    strings.TrimSpace(in.PhotoKey),
		},
		Contact: Contact{
			Name:    strings.TrimSpace(in.ContactName),
			Email:   strings.TrimSpace(in.ContactEmail),
			Address: strings.TrimSpace(in.ContactAddress),
			Phone:   strings.TrimSpace(in.ContactPhone),
		},
		Consent:   true,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		span.RecordError(err)
		return Request{}, fmt.Errorf("publications: %w", err)
	}

	s.record("submitted")
	s.log.Info("publish request submitted", map[string]any{"request_id": req.ID, "user_id": userID})
	return req, nil
}

// Approve crea la mascota (disponible, responsable = quien envió) y marca la solicitud approved.
// ErrNotPending si ya estaba procesada: es informativo, no un fallo.
func (s *Service) Approve(ctx context.Context, moderatorID, requestID string) (Request, error) {
	ctx, span := s.tracer.Start(ctx, "publications.approve", trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	req, err := s.get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		s.record("already_processed")
		return req, ErrNotPending
	}

	now := s.now()
	p := pets.NewPet(req.SubmitterID, req.Pet, now)

	if err := s.repo.Approve(ctx, req.ID, p, ApprovalMessage, now); err != nil {
		if errors.Is(err, ErrNotPending) {
			s.record("already_processed")
			return req, ErrNotPending
		}
		span.RecordError(err)
		return Request{}, fmt.Errorf("publications: approve: %w", err)
	}

	req.Status = StatusApproved
	req.ApprovalMessage = ApprovalMessage
	req.PetID = p.ID
	req.UpdatedAt = now
	req.ResolvedAt = &now

	s.record("approved")
	s.log.Info("publish request approved", map[string]any{
		"request_id":   req.ID,
		"pet_id":       p.ID,
		"moderator_id": moderatorID,
	})
	return req, nil
}

// Reject exige motivo; se guarda tal cual para mostrárselo a quien envió.
func (s *Service) Reject(ctx context.Context, moderatorID, requestID, reason string) (Request, error) {
	ctx, span := s.tracer.Start(ctx, "publications.reject", trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	if strings.TrimSpace(reason) == "" {
		return Request{}, reasonRequired()
	}

	req, err := s.get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		s.record("already_processed")
		return req, ErrNotPending
	}

	now := s.now()
	if err := s.repo.Reject(ctx, req.ID, reason, now); err != nil {
		if errors.Is(err, ErrNotPending) {
			s.record("already_processed")
			return req, ErrNotPending
		}
		span.RecordError(err)
		return Request{}, fmt.Errorf("publications: reject: %w", err)
	}

	req.Status = StatusRejected
	req.RejectionReason = reason
	req.UpdatedAt = now
	req.ResolvedAt = &now

	s.record("rejected")
	s.log.Info("publish request rejected", map[string]any{"request_id": req.ID, "moderator_id": moderatorID})
	return req, nil
}

// BulkResult agrega el resultado por ítem de una acción masiva.
type BulkResult struct {
	Processed        int      `json:"processed"`
	AlreadyProcessed int      `json:"already_processed"`
	Missing          int      `json:"missing"`
	ProcessedIDs     []string `json:"processed_ids"`
}

func (s *Service) ApproveMany(ctx context.Context, moderatorID string, ids []string) (BulkResult, error) {
	return s.bulk(ctx, ids, func(id string) (Request, error) {
		return s.Approve(ctx, moderatorID, id)
	})
}

// RejectMany aplica un único motivo a todas las pendientes. Sin motivo no toca nada.
func (s *Service) RejectMany(ctx context.Context, moderatorID string, ids []string, reason string) (BulkResult, error) {
	if strings.TrimSpace(reason) == "" {
		return BulkResult{}, reasonRequired()
	}
	return s.bulk(ctx, ids, func(id string) (Request, error) {
		return s.Reject(ctx, moderatorID, id, reason)
	})
}

func (s *Service) bulk(ctx context.Context, ids []string, apply func(id string) (Request, error)) (BulkResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return BulkResult{}, &ValidationError{Fields: map[string]string{"ids": "Selecciona al menos una solicitud."}}
	}

	res := BulkResult{ProcessedIDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := apply(id)
		switch {
		case err == nil:
			res.Processed++
			res.ProcessedIDs = append(res.ProcessedIDs, id)
		case errors.Is(err, ErrNotPending):
			res.AlreadyProcessed++
		case errors.Is(err, ErrNotFound):
			res.Missing++
		default:
			return res, err
		}
	}
	return res, nil
}

// ListOwn: solicitudes del usuario con su estado y mensaje, más recientes primero.
func (s *Service) ListOwn(ctx context.Context, userID string) ([]Request, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListBySubmitter(ctx, userID)
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Request, error) {
	return s.repo.ListByStatus(ctx, status)
}

// Cancel: quien envió retira su solicitud mientras siga pendiente. Ajena = ErrNotFound.
func (s *Service) Cancel(ctx context.Context, userID, requestID string) (Request, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.SubmitterID != strings.TrimSpace(userID) {
		return Request{}, ErrNotFound
	}
	if req.Status != StatusPending {
		return req, ErrNotPending
	}

	now := s.now()
	if err := s.repo.Cancel(ctx, req.ID, now); err != nil {
		if errors.Is(err, ErrNotPending) {
			return req, ErrNotPending
		}
		return Request{}, err
	}

	req.Status = StatusCancelled
	req.UpdatedAt = now
	req.ResolvedAt = &now
	s.record("cancelled")
	return req, nil
}

func (s *Service) get(ctx context.Context, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) record(outcome string) {
	if s.rec != nil {
		s.rec.RecordOutcome(workflow, outcome)
	}
}

func reasonRequired() *ValidationError {
	return &ValidationError{Fields: map[string]string{
		"motivo": "Debes indicar el motivo del rechazo.",
	}}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
