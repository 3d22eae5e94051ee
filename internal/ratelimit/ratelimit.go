// Package ratelimit limits contact submissions per client with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// tokenBucket allows capacity requests in a burst and refills at a
// steady rate
type tokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
	}
}

func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed > 0 {
		tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
		tb.lastRefill = now
	}
}

// allow consumes a token if one is available
func (tb *tokenBucket) allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// status reports remaining tokens and how long until one is available
func (tb *tokenBucket) status(now time.Time) (remaining int, retryAfter time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	remaining = int(tb.tokens)
	if tb.tokens < 1.0 && tb.refillRate > 0 {
		retryAfter = time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
	}
	return remaining, retryAfter
}

// Info describes the outcome of one Allow call
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Config holds limiter settings
type Config struct {
	Limit           int
	Window          time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
}

// Limiter keeps one bucket per client
type Limiter struct {
	cfg Config
	now func() time.Time

	mu         sync.Mutex
	buckets    map[string]*tokenBucket
	lastAccess map[string]time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a limiter. A Limit of zero or less disables limiting.
func NewLimiter(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = cfg.Window
	}

	l := &Limiter{
		cfg:        cfg,
		now:        time.Now,
		buckets:    make(map[string]*tokenBucket),
		lastAccess: make(map[string]time.Time),
	}

	if cfg.Limit > 0 && cfg.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(cfg.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}
	return l
}

// Allow reports whether clientID may make another request
func (l *Limiter) Allow(clientID string) (bool, Info) {
	if l.cfg.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	bucket := l.bucket(clientID, now)

	allowed := bucket.allow(now)
	remaining, retryAfter := bucket.status(now)

	return allowed, Info{
		Allowed:    allowed,
		Limit:      l.cfg.Limit,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) bucket(key string, now time.Time) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastAccess[key] = now
	if b, ok := l.buckets[key]; ok {
		return b
	}
	b := newTokenBucket(l.cfg.Limit, float64(l.cfg.Limit)/l.cfg.Window.Seconds(), now)
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.Sweep()
		case <-l.cleanupStop:
			return
		}
	}
}

// Sweep drops buckets idle for longer than IdleTTL and returns how many
// were removed
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.cfg.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, at := range l.lastAccess {
		if at.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop stops the cleanup goroutine
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
