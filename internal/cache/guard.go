// Package cache provides the pending-submission guard used by the
// contact form. A key can be held by one caller at a time until it is
// released or its TTL expires.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guard grants exclusive, expiring holds on keys
type Guard interface {
	// Acquire takes the key for ttl and returns a token identifying this
	// hold. It reports false when the key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	// Release drops the hold on key if it is still the one named by
	// token. Releasing a free or re-acquired key is a no-op.
	Release(ctx context.Context, key, token string) error
}

type hold struct {
	token   string
	expires time.Time
}

// Memory is an in-process Guard
type Memory struct {
	mu    sync.Mutex
	holds map[string]hold
	now   func() time.Time
}

// NewMemory creates an empty in-process guard
func NewMemory() *Memory {
	return &Memory{
		holds: make(map[string]hold),
		now:   time.Now,
	}
}

// Acquire implements Guard
func (m *Memory) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if h, held := m.holds[key]; held && now.Before(h.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	m.holds[key] = hold{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Release implements Guard
func (m *Memory) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, held := m.holds[key]; held && h.token == token {
		delete(m.holds, key)
	}
	return nil
}

// Sweep removes expired holds
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, h := range m.holds {
		if !now.Before(h.expires) {
			delete(m.holds, k)
			removed++
		}
	}
	return removed
}
