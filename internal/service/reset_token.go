package service

import (
	"context"
	"errors"
	"time"

	"foodhub/internal/domain"
)

// ResetTokenService emite tokens de reseteo firmados con secreto del servidor + hash vigente.
// Un reseteo exitoso cambia el hash y con ello invalida todos los tokens previos.
type ResetTokenService struct {
	serverSecret string
	ttl          time.Duration
	now          func() time.Time
}

func NewResetTokenService(serverSecret string, ttl time.Duration, now func() time.Time) *ResetTokenService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &ResetTokenService{serverSecret: serverSecret, ttl: ttl, now: now}
}

func (s *ResetTokenService) signerFor(user domain.User) *TokenSigner {
	current := func(context.Context) (string, error) {
		return user.PasswordHash, nil
	}
	return NewTokenSigner(tokenIssuer, DerivedSecret(s.serverSecret, current), s.now)
}

func (s *ResetTokenService) Issue(ctx context.Context, user domain.User) (string, error) {
	return s.signerFor(user).Sign(ctx, TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenTypeReset,
	}, s.ttl)
}

// Verify comprueba el token contra el hash actual del usuario.
func (s *ResetTokenService) Verify(ctx context.Context, user domain.User, token string) (TokenClaims, error) {
	claims, err := s.signerFor(user).Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return TokenClaims{}, ErrInvalidOrExpiredToken
		}
		return TokenClaims{}, err
	}
	if claims.TokenType != tokenTypeReset || claims.UserID != user.ID {
		return TokenClaims{}, ErrInvalidOrExpiredToken
	}
	return claims, nil
}
