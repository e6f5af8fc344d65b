package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type limiterFactory func(t *testing.T, window time.Duration, max int, now func() time.Time) OTPRateLimiter

func limiterFactories() map[string]limiterFactory {
	return map[string]limiterFactory{
		"memory": func(_ *testing.T, window time.Duration, max int, now func() time.Time) OTPRateLimiter {
			return NewOTPRateLimiter(window, max, now)
		},
		"redis": func(t *testing.T, window time.Duration, max int, now func() time.Time) OTPRateLimiter {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisOTPRateLimiter(client, window, max, now)
		},
	}
}

func TestOTPRateLimiterSlidingWindow(t *testing.T) {
	for name, factory := range limiterFactories() {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			l := factory(t, 10*time.Minute, 2, clock.Now)

			if !l.Allow("a@x.io") {
				t.Fatalf("first request should pass")
			}
			clock.Advance(6 * time.Minute)
			if !l.Allow("a@x.io") {
				t.Fatalf("second request should pass")
			}
			clock.Advance(2 * time.Minute)
			if l.Allow("a@x.io") {
				t.Fatalf("third request inside window should be limited")
			}

			// La primera solicitud sale de la ventana; la segunda sigue contando.
			clock.Advance(2*time.Minute + time.Second)
			if !l.Allow("a@x.io") {
				t.Fatalf("request after the oldest hit expired should pass")
			}
			if l.Allow("a@x.io") {
				t.Fatalf("window should be full again")
			}
		})
	}
}

func TestOTPRateLimiterKeys(t *testing.T) {
	for name, factory := range limiterFactories() {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			l := factory(t, time.Minute, 1, clock.Now)

			if !l.Allow("a@x.io") {
				t.Fatalf("first request should pass")
			}
			if l.Allow(" a@x.io ") {
				t.Fatalf("surrounding spaces should not open a new bucket")
			}
			if !l.Allow("A@x.io") {
				t.Fatalf("emails are case sensitive, like pending registrations")
			}
			if !l.Allow("b@x.io") {
				t.Fatalf("limits are per email")
			}
			if l.Allow("   ") {
				t.Fatalf("blank email should be rejected")
			}
		})
	}
}

func TestMemoryOTPRateLimiterEvictsIdleEmails(t *testing.T) {
	clock := newFakeClock()
	l := NewOTPRateLimiter(time.Minute, 3, clock.Now).(*memoryRegistrationLimiter)

	for i := 0; i < 50; i++ {
		l.Allow(fmt.Sprintf("user%d@x.io", i))
	}
	if len(l.hits) != 50 {
		t.Fatalf("expected 50 tracked emails, got %d", len(l.hits))
	}

	clock.Advance(time.Minute + time.Second)
	if !l.Allow("fresh@x.io") {
		t.Fatalf("fresh email should pass")
	}
	if len(l.hits) != 1 {
		t.Fatalf("idle emails should be evicted, %d left", len(l.hits))
	}
}

func TestRedisOTPRateLimiterKeyTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisOTPRateLimiter(client, 2*time.Minute, 3, nil)
	if !l.Allow("a@x.io") {
		t.Fatalf("first request should pass")
	}
	if ttl := mr.TTL("reg:rl:a@x.io"); ttl != 2*time.Minute {
		t.Fatalf("unexpected window ttl %s", ttl)
	}
}

func TestRedisOTPRateLimiterFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	l := NewRedisOTPRateLimiter(client, time.Minute, 1, nil)
	mr.Close()
	for i := 0; i < 3; i++ {
		if !l.Allow("a@x.io") {
			t.Fatalf("request %d should pass while redis is down", i+1)
		}
	}
	if NewRedisOTPRateLimiter(nil, time.Minute, 1, nil) != nil {
		t.Fatalf("nil client should yield no limiter")
	}
}
