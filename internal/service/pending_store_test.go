package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"foodhub/internal/domain"
)

type pendingStoreFactory func(t *testing.T, now func() time.Time) PendingRegistrationStore

func pendingStoreFactories() map[string]pendingStoreFactory {
	return map[string]pendingStoreFactory{
		"memory": func(*testing.T, func() time.Time) PendingRegistrationStore {
			return NewMemoryPendingStore()
		},
		"redis": func(t *testing.T, now func() time.Time) PendingRegistrationStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisPendingStore(client, now)
		},
	}
}

func samplePending(now time.Time) domain.PendingRegistration {
	return domain.PendingRegistration{
		Username:     "alice",
		Email:        "a@x.io",
		PasswordHash: "$2a$04$hash",
		Code:         "042137",
		ExpiresAt:    now.Add(5 * time.Minute),
	}
}

func TestPendingStoreConsume(t *testing.T) {
	for name, factory := range pendingStoreFactories() {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			store := factory(t, clock.Now)
			ctx := context.Background()
			entry := samplePending(clock.Now())

			if err := store.Put(ctx, entry); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Consume(ctx, entry.Email, "999999", clock.Now()); !errors.Is(err, ErrInvalidOrExpiredCode) {
				t.Fatalf("wrong code: expected ErrInvalidOrExpiredCode, got %v", err)
			}
			if _, err := store.Consume(ctx, "other@x.io", entry.Code, clock.Now()); !errors.Is(err, ErrInvalidOrExpiredCode) {
				t.Fatalf("missing entry: expected ErrInvalidOrExpiredCode, got %v", err)
			}

			got, err := store.Consume(ctx, entry.Email, entry.Code, clock.Now())
			if err != nil {
				t.Fatalf("consume: %v", err)
			}
			if got.Username != entry.Username || got.PasswordHash != entry.PasswordHash || !got.ExpiresAt.Equal(entry.ExpiresAt) {
				t.Fatalf("unexpected entry %+v", got)
			}
			if _, err := store.Consume(ctx, entry.Email, entry.Code, clock.Now()); !errors.Is(err, ErrInvalidOrExpiredCode) {
				t.Fatalf("entry must be single use, got %v", err)
			}
		})
	}
}

func TestPendingStoreExpiry(t *testing.T) {
	for name, factory := range pendingStoreFactories() {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			store := factory(t, clock.Now)
			ctx := context.Background()
			entry := samplePending(clock.Now())

			if err := store.Put(ctx, entry); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Consume(ctx, entry.Email, entry.Code, entry.ExpiresAt); !errors.Is(err, ErrInvalidOrExpiredCode) {
				t.Fatalf("consume at expiry: expected ErrInvalidOrExpiredCode, got %v", err)
			}
			if _, err := store.Consume(ctx, entry.Email, entry.Code, entry.ExpiresAt.Add(-time.Second)); !errors.Is(err, ErrInvalidOrExpiredCode) {
				t.Fatalf("expired entry must be gone, got %v", err)
			}

			if err := store.Put(ctx, entry); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Consume(ctx, entry.Email, entry.Code, entry.ExpiresAt.Add(-time.Microsecond)); err != nil {
				t.Fatalf("consume just before expiry: %v", err)
			}
		})
	}
}

func TestPendingStoreOverwriteAndRestore(t *testing.T) {
	for name, factory := range pendingStoreFactories() {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			store := factory(t, clock.Now)
			ctx := context.Background()
			first := samplePending(clock.Now())
			second := first
			second.Code = "555555"
			second.Username = "alice2"

			if err := store.Put(ctx, first); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := store.Put(ctx, second); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Consume(ctx, first.Email, first.Code, clock.Now()); !errors.Is(err, ErrInvalidOrExpiredCode) {
				t.Fatalf("overwritten code should fail, got %v", err)
			}

			// Restore no pisa una entrada más nueva.
			if err := store.Restore(ctx, first); err != nil {
				t.Fatalf("restore: %v", err)
			}
			if _, err := store.Consume(ctx, first.Email, first.Code, clock.Now()); !errors.Is(err, ErrInvalidOrExpiredCode) {
				t.Fatalf("restore replaced a newer entry: %v", err)
			}

			consumed, err := store.Consume(ctx, second.Email, second.Code, clock.Now())
			if err != nil {
				t.Fatalf("consume: %v", err)
			}
			if err := store.Restore(ctx, consumed); err != nil {
				t.Fatalf("restore: %v", err)
			}
			again, err := store.Consume(ctx, second.Email, second.Code, clock.Now())
			if err != nil {
				t.Fatalf("restored entry should verify: %v", err)
			}
			if again.Username != "alice2" {
				t.Fatalf("unexpected restored entry %+v", again)
			}
		})
	}
}

func TestPendingStoreConcurrentConsume(t *testing.T) {
	for name, factory := range pendingStoreFactories() {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			store := factory(t, clock.Now)
			ctx := context.Background()
			entry := samplePending(clock.Now())
			if err := store.Put(ctx, entry); err != nil {
				t.Fatalf("put: %v", err)
			}

			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := store.Consume(ctx, entry.Email, entry.Code, clock.Now()); err == nil {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			if wins.Load() != 1 {
				t.Fatalf("expected exactly one successful consume, got %d", wins.Load())
			}
		})
	}
}

func TestRedisPendingStoreSetsKeyTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	clock := newFakeClock()
	store := NewRedisPendingStore(client, clock.Now)

	entry := samplePending(clock.Now())
	if err := store.Put(context.Background(), entry); err != nil {
		t.Fatalf("put: %v", err)
	}
	ttl := mr.TTL("reg:pending:" + entry.Email)
	if ttl != 5*time.Minute+pendingKeyGrace {
		t.Fatalf("unexpected key ttl %s", ttl)
	}
	if got := mr.HGet("reg:pending:"+entry.Email, "code"); got != entry.Code {
		t.Fatalf("unexpected stored code %q", got)
	}
}

func TestNewRedisPendingStoreNilClient(t *testing.T) {
	if NewRedisPendingStore(nil, nil) != nil {
		t.Fatalf("expected nil store for nil client")
	}
}
