package service

import (
	"sync"

	"foodhub/internal/domain"
)

// Availability es el interruptor global "Available"/"Sold Out" del menú. Vive en memoria de proceso.
type Availability struct {
	mu     sync.Mutex
	status bool
}

func NewAvailability(initial bool) *Availability {
	return &Availability{status: initial}
}

func (a *Availability) Status() domain.AvailabilityStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return availabilityStatus(a.status)
}

func (a *Availability) Toggle() domain.AvailabilityStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = !a.status
	return availabilityStatus(a.status)
}

func availabilityStatus(status bool) domain.AvailabilityStatus {
	message := domain.AvailabilitySoldOut
	if status {
		message = domain.AvailabilityAvailable
	}
	return domain.AvailabilityStatus{Status: status, Message: message}
}
