package service

import (
	"strings"
	"sync"
	"time"
)

// OTPRateLimiter limita cuántas altas pendientes se piden por email en una ventana.
type OTPRateLimiter interface {
	Allow(email string) bool
}

// registrationLimitKey usa el mismo criterio que el pending store: email recortado,
// sensible a mayúsculas.
func registrationLimitKey(email string) string {
	return strings.TrimSpace(email)
}

func normalizeLimits(window time.Duration, max int, now func() time.Time) (time.Duration, int, func() time.Time) {
	if window <= 0 {
		window = 10 * time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if now == nil {
		now = time.Now
	}
	return window, max, now
}

type memoryRegistrationLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	now       func() time.Time
	hits      map[string][]time.Time
	nextSweep time.Time
}

// NewOTPRateLimiter crea un limitador en memoria de ventana deslizante.
func NewOTPRateLimiter(window time.Duration, max int, now func() time.Time) OTPRateLimiter {
	window, max, now = normalizeLimits(window, max, now)
	return &memoryRegistrationLimiter{
		window: window,
		max:    max,
		now:    now,
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryRegistrationLimiter) Allow(email string) bool {
	key := registrationLimitKey(email)
	if key == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now().UTC()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	kept := recentHits(l.hits[key], cutoff)
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// sweep borra, una vez por ventana, los emails sin envíos recientes.
func (l *memoryRegistrationLimiter) sweep(now, cutoff time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, hits := range l.hits {
		if kept := recentHits(hits, cutoff); len(kept) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = kept
		}
	}
	l.nextSweep = now.Add(l.window)
}

func recentHits(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, ts := range hits {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
