package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// allowRegistrationLua aplica la misma ventana deslizante que el limitador en memoria
// sobre un sorted set por email. KEYS[1] = clave, ARGV[1] = now en ms unix,
// ARGV[2] = ventana en ms, ARGV[3] = máximo, ARGV[4] = miembro único.
var allowRegistrationLua = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return 1
`)

const redisLimiterTimeout = 500 * time.Millisecond

type redisRegistrationLimiter struct {
	client redis.UniversalClient
	window time.Duration
	max    int
	now    func() time.Time
	prefix string
}

// NewRedisOTPRateLimiter comparte el límite de altas pendientes entre réplicas.
func NewRedisOTPRateLimiter(client redis.UniversalClient, window time.Duration, max int, now func() time.Time) OTPRateLimiter {
	if client == nil {
		return nil
	}
	window, max, now = normalizeLimits(window, max, now)
	return &redisRegistrationLimiter{
		client: client,
		window: window,
		max:    max,
		now:    now,
		prefix: "reg:rl:",
	}
}

// Allow falla abierto si Redis no responde: el registro no debe caerse por el limitador.
func (l *redisRegistrationLimiter) Allow(email string) bool {
	key := registrationLimitKey(email)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisLimiterTimeout)
	defer cancel()

	allowed, err := allowRegistrationLua.Run(ctx, l.client,
		[]string{l.prefix + key},
		l.now().UnixMilli(),
		l.window.Milliseconds(),
		l.max,
		uuid.NewString(),
	).Int()
	if err != nil {
		return true
	}
	return allowed == 1
}
