package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"foodhub/internal/domain"
)

// consumePendingLua valida y borra atómicamente una alta pendiente.
// KEYS[1] = clave del hash, ARGV[1] = código, ARGV[2] = now en microsegundos unix.
var consumePendingLua = redis.NewScript(`
local fields = redis.call('HMGET', KEYS[1], 'code', 'expires_at')
if not fields[1] then
  return {err='PENDING_INVALID'}
end
if tonumber(ARGV[2]) >= tonumber(fields[2]) then
  redis.call('DEL', KEYS[1])
  return {err='PENDING_INVALID'}
end
if fields[1] ~= ARGV[1] then
  return {err='PENDING_INVALID'}
end
local entry = redis.call('HGETALL', KEYS[1])
redis.call('DEL', KEYS[1])
return entry
`)

// restorePendingLua reinstala una entrada sólo si la clave no existe.
var restorePendingLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'username', ARGV[1], 'email', ARGV[2], 'password_hash', ARGV[3], 'code', ARGV[4], 'expires_at', ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return 1
`)

const pendingInvalidReply = "PENDING_INVALID"

// pendingKeyGrace mantiene la clave algo más que la expiración lógica; la validez la decide expires_at.
const pendingKeyGrace = time.Minute

type redisPendingStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisPendingStore comparte las altas pendientes entre réplicas del API.
func NewRedisPendingStore(client redis.UniversalClient, now func() time.Time) PendingRegistrationStore {
	if client == nil {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &redisPendingStore{
		client: client,
		prefix: "reg:pending:",
		now:    now,
	}
}

func (s *redisPendingStore) key(email string) string {
	return s.prefix + email
}

func (s *redisPendingStore) ttl(expiresAt time.Time) time.Duration {
	ttl := expiresAt.Sub(s.now()) + pendingKeyGrace
	if ttl < pendingKeyGrace {
		ttl = pendingKeyGrace
	}
	return ttl
}

func (s *redisPendingStore) Put(ctx context.Context, entry domain.PendingRegistration) error {
	key := s.key(entry.Email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"username", entry.Username,
			"email", entry.Email,
			"password_hash", entry.PasswordHash,
			"code", entry.Code,
			"expires_at", entry.ExpiresAt.UnixMicro(),
		)
		pipe.PExpire(ctx, key, s.ttl(entry.ExpiresAt))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	return nil
}

func (s *redisPendingStore) Consume(ctx context.Context, email, code string, now time.Time) (domain.PendingRegistration, error) {
	res, err := consumePendingLua.Run(ctx, s.client, []string{s.key(email)}, code, now.UnixMicro()).StringSlice()
	if err != nil {
		var redisErr redis.Error
		if errors.As(err, &redisErr) && strings.Contains(redisErr.Error(), pendingInvalidReply) {
			return domain.PendingRegistration{}, ErrInvalidOrExpiredCode
		}
		return domain.PendingRegistration{}, fmt.Errorf("consume pending registration: %w", err)
	}
	return decodePending(res)
}

func (s *redisPendingStore) Restore(ctx context.Context, entry domain.PendingRegistration) error {
	ttl := s.ttl(entry.ExpiresAt)
	err := restorePendingLua.Run(ctx, s.client, []string{s.key(entry.Email)},
		entry.Username,
		entry.Email,
		entry.PasswordHash,
		entry.Code,
		entry.ExpiresAt.UnixMicro(),
		ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("restore pending registration: %w", err)
	}
	return nil
}

func decodePending(pairs []string) (domain.PendingRegistration, error) {
	if len(pairs)%2 != 0 {
		return domain.PendingRegistration{}, errors.New("malformed pending registration")
	}
	var entry domain.PendingRegistration
	for i := 0; i < len(pairs); i += 2 {
		value := pairs[i+1]
		switch pairs[i] {
		case "username":
			entry.Username = value
		case "email":
			entry.Email = value
		case "password_hash":
			entry.PasswordHash = value
		case "code":
			entry.Code = value
		case "expires_at":
			micros, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return domain.PendingRegistration{}, fmt.Errorf("malformed pending expiry: %w", err)
			}
			entry.ExpiresAt = time.UnixMicro(micros).UTC()
		}
	}
	return entry, nil
}
