package service

import (
	"context"
	"time"
)

const tokenIssuer = "foodhub"

// JWTService emite y valida tokens de sesión sin estado.
type JWTService struct {
	signer *TokenSigner
	ttl    time.Duration
}

// NewJWTService crea el servicio de sesión; ttl <= 0 emite tokens sin expiración.
func NewJWTService(secret string, ttl time.Duration, now func() time.Time) *JWTService {
	var source SecretSource
	if secret != "" {
		source = StaticSecret(secret)
	}
	return &JWTService{
		signer: NewTokenSigner(tokenIssuer, source, now),
		ttl:    ttl,
	}
}

func (s *JWTService) IssueSessionToken(userID string) (string, error) {
	return s.signer.Sign(context.Background(), TokenClaims{
		UserID:    userID,
		TokenType: tokenTypeSession,
	}, s.ttl)
}

// VerifySessionToken devuelve el id de usuario contenido en un token de sesión válido.
func (s *JWTService) VerifySessionToken(token string) (string, error) {
	claims, err := s.signer.Verify(context.Background(), token)
	if err != nil {
		return "", err
	}
	if claims.TokenType != tokenTypeSession {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
