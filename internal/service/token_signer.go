package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeSession = "session"
	tokenTypeReset   = "reset"
)

// SecretSource devuelve la clave HMAC vigente en el momento de firmar o verificar.
type SecretSource func(ctx context.Context) ([]byte, error)

// StaticSecret usa siempre el mismo secreto de proceso.
func StaticSecret(secret string) SecretSource {
	return func(context.Context) ([]byte, error) {
		return []byte(secret), nil
	}
}

// DerivedSecret concatena el secreto del servidor con un valor mutable del usuario.
// Si ese valor cambia, todo token firmado con la clave anterior deja de verificar.
func DerivedSecret(serverSecret string, current func(ctx context.Context) (string, error)) SecretSource {
	return func(ctx context.Context) ([]byte, error) {
		value, err := current(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(serverSecret + value), nil
	}
}

type TokenClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var errSigningKeyMissing = errors.New("signing key missing")

// TokenSigner firma y valida JWT HS256 con una clave obtenida de un SecretSource.
type TokenSigner struct {
	issuer string
	secret SecretSource
	now    func() time.Time
}

func NewTokenSigner(issuer string, secret SecretSource, now func() time.Time) *TokenSigner {
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{issuer: issuer, secret: secret, now: now}
}

// Sign firma los claims; ttl <= 0 emite un token sin expiración.
func (s *TokenSigner) Sign(ctx context.Context, claims TokenClaims, ttl time.Duration) (string, error) {
	key, err := s.key(ctx)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:   s.issuer,
		Subject:  claims.UserID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// Verify valida firma, emisor y expiración (si existe). Cualquier fallo es ErrInvalidToken.
func (s *TokenSigner) Verify(ctx context.Context, tokenString string) (TokenClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	key, err := s.key(ctx)
	if err != nil {
		return TokenClaims{}, err
	}

	var claims TokenClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err = parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.Subject != claims.UserID {
		return TokenClaims{}, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenSigner) key(ctx context.Context) ([]byte, error) {
	if s.secret == nil {
		return nil, errSigningKeyMissing
	}
	key, err := s.secret(ctx)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, errSigningKeyMissing
	}
	return key, nil
}
