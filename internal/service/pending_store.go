package service

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"foodhub/internal/domain"
)

// PendingRegistrationStore guarda altas pendientes de OTP, una por email.
//
// Consume es la única transición de salida: si el código coincide y now < ExpiresAt
// borra la entrada y la devuelve; cualquier otro caso es ErrInvalidOrExpiredCode y la
// entrada vigente se conserva para reintentos. Restore reinstala una entrada consumida
// sólo si nadie registró otra para el mismo email mientras tanto.
type PendingRegistrationStore interface {
	Put(ctx context.Context, entry domain.PendingRegistration) error
	Consume(ctx context.Context, email, code string, now time.Time) (domain.PendingRegistration, error)
	Restore(ctx context.Context, entry domain.PendingRegistration) error
}

type memoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]domain.PendingRegistration
}

// NewMemoryPendingStore crea un store en memoria de proceso.
func NewMemoryPendingStore() PendingRegistrationStore {
	return &memoryPendingStore{
		entries: make(map[string]domain.PendingRegistration),
	}
}

func (s *memoryPendingStore) Put(_ context.Context, entry domain.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Email] = entry
	return nil
}

func (s *memoryPendingStore) Consume(_ context.Context, email, code string, now time.Time) (domain.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[email]
	if !ok {
		return domain.PendingRegistration{}, ErrInvalidOrExpiredCode
	}
	if !now.Before(entry.ExpiresAt) {
		// Una entrada vencida nunca puede volver a ser válida.
		delete(s.entries, email)
		return domain.PendingRegistration{}, ErrInvalidOrExpiredCode
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return domain.PendingRegistration{}, ErrInvalidOrExpiredCode
	}
	delete(s.entries, email)
	return entry, nil
}

func (s *memoryPendingStore) Restore(_ context.Context, entry domain.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.Email]; exists {
		return nil
	}
	s.entries[entry.Email] = entry
	return nil
}
