package cache

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "portfolio:guard:"

// releaseScript deletes the key only while it still holds the caller's
// token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Guard shared between server instances
type Redis struct {
	client *redis.Client
	logger *log.Logger

	warnedUnavailable atomic.Bool
}

// NewRedis wraps an existing client
func NewRedis(client *redis.Client, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.Default()
	}
	return &Redis{client: client, logger: logger}
}

// Acquire implements Guard with SET NX
func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release implements Guard
func (r *Redis) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{keyPrefix + key}, token).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Printf("[Guard] Redis error: %v", err)
	}
}

// NewGuard returns a Redis guard when addr is set and reachable, and an
// in-process guard otherwise
func NewGuard(ctx context.Context, addr, password string, logger *log.Logger) Guard {
	if logger == nil {
		logger = log.Default()
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return NewMemory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Printf("[Guard] Redis unavailable at %s, using in-memory guard: %v", addr, err)
		_ = client.Close()
		return NewMemory()
	}
	logger.Printf("[Guard] Using Redis at %s", addr)
	return NewRedis(client, logger)
}
