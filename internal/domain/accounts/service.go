package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-adoption-portal/internal/platform/logger"
	"pet-adoption-portal/internal/ports/auth"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrSessionsDisabled   = errors.New("session issuer not configured")
)

const minPasswordLen = 8

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

type Service struct {
	repo    Repository
	issuer  auth.TokenIssuer
	limiter *Limiter
	log     logger.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLimiter limita login y registro por IP. Sin limiter no hay límite.
func WithLimiter(l *Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

func NewService(repo Repository, issuer auth.TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		issuer: issuer,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type RegisterInput struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
	ClientIP  string
}

// Register crea un usuario normal. Todos los problemas del formulario vuelven juntos en *ValidationError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if !s.limiter.Allow(in.ClientIP) {
		return User{}, ErrRateLimited
	}
	return s.create(ctx, in, false)
}

// CreateModerator crea un usuario staff (comando create-moderator).
func (s *Service) CreateModerator(ctx context.Context, username, email, password string) (User, error) {
	return s.create(ctx, RegisterInput{Username: username, Email: email, Password1: password, Password2: password}, true)
}

func (s *Service) create(ctx context.Context, in RegisterInput, staff bool) (User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	verr := &ValidationError{}

	if email == "" {
		verr.add("email", "El correo electrónico es obligatorio")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr.add("email", "El correo electrónico no es válido")
	} else if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		verr.add("email", "Este correo electrónico ya está registrado")
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	if username == "" {
		verr.add("username", "El nombre de usuario es obligatorio")
	} else if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		verr.add("username", "Este nombre de usuario ya está en uso")
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	switch {
	case in.Password1 == "":
		verr.add("password1", "La contraseña es obligatoria")
	case len([]rune(in.Password1)) < minPasswordLen:
		verr.add("password1", "La contraseña debe tener al menos 8 caracteres")
	}
	switch {
	case in.Password2 == "":
		verr.add("password2", "Debes confirmar la contraseña")
	case in.Password1 != in.Password2:
		verr.add("password2", "Las contraseñas no coinciden")
	}

	if len(verr.Fields) > 0 {
		return User{}, verr
	}

	hash, salt, err := hashPassword(in.Password1)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Staff:        staff,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			return User{}, &ValidationError{Fields: map[string]string{"username": "Este nombre de usuario ya está en uso"}}
		case errors.Is(err, ErrEmailTaken):
			return User{}, &ValidationError{Fields: map[string]string{"email": "Este correo electrónico ya está registrado"}}
		}
		return User{}, fmt.Errorf("accounts: create: %w", err)
	}

	s.log.Info("user registered", map[string]any{"user_id": u.ID, "staff": staff})
	return u, nil
}

type LoginInput struct {
	Identifier string // usuario o correo
	Password   string
	ClientIP   string
}

type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// Login prueba primero por username y, si falla y parece un correo, por email sin mayúsculas.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	if !s.limiter.Allow(in.ClientIP) {
		return Session{}, ErrRateLimited
	}

	ident := strings.TrimSpace(in.Identifier)
	if ident == "" || in.Password == "" {
		return Session{}, ErrInvalidInput
	}

	u, ok, err := s.authenticate(ctx, s.repo.GetByUsername, ident, in.Password)
	if err != nil {
		return Session{}, err
	}
	if !ok && strings.Contains(ident, "@") {
		u, ok, err = s.authenticate(ctx, s.repo.GetByEmail, ident, in.Password)
		if err != nil {
			return Session{}, err
		}
	}
	if !ok {
		s.log.Warn("login failed", map[string]any{"ip": in.ClientIP})
		return Session{}, ErrInvalidCredentials
	}

	if s.issuer == nil {
		return Session{}, ErrSessionsDisabled
	}
	token, exp, err := s.issuer.Issue(ctx, auth.Claims{UserID: u.ID, Username: u.Username, Email: u.Email})
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}

	s.log.Info("user logged in", map[string]any{"user_id": u.ID})
	return Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *Service) authenticate(ctx context.Context, find func(context.Context, string) (User, error), key, password string) (User, bool, error) {
	u, err := find(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	ok, err := verifyPassword(password, u.PasswordSalt, u.PasswordHash)
	if err != nil {
		return User{}, false, fmt.Errorf("verify password: %w", err)
	}
	return u, ok, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// IsStaff lo usa el resolver de capabilities.
func (s *Service) IsStaff(ctx context.Context, userID string) (bool, error) {
	u, err := s.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Staff, nil
}
