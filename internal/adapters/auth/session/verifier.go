package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"pet-adoption-portal/internal/ports/auth"
)

// Verifier implementa auth.AuthVerifier sobre los tokens del Issuer.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSecretMissing
	}
	return &Verifier{secret: []byte(secret), now: time.Now}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var sc sessionClaims
	_, err := parser.ParseWithClaims(token, &sc, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	// jwt/v4 valida exp contra time.Now; volvemos a comprobar con el reloj inyectado.
	if sc.ExpiresAt == nil || !v.now().Before(sc.ExpiresAt.Time) {
		return auth.Claims{}, fmt.Errorf("%w: expired", ErrTokenInvalid)
	}
	if sc.Issuer != issuerName {
		return auth.Claims{}, fmt.Errorf("%w: issuer", ErrTokenInvalid)
	}

	userID := strings.TrimSpace(sc.Subject)
	if userID == "" {
		return auth.Claims{}, errors.New("session claims missing user id")
	}

	return auth.Claims{UserID: userID, Username: sc.Username, Email: sc.Email}, nil
}
