package runner

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-role rate limiting so a burst of dispatch groups
// does not overwhelm one executor role's backend
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate disables
// limiting entirely.
func NewLimiter(dispatchesPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(dispatchesPerSecond),
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given role
func (l *Limiter) Wait(ctx context.Context, role string) error {
	if l.defaultRate <= 0 {
		return nil
	}
	return l.getLimiter(role).Wait(ctx)
}

// Allow checks if a dispatch is allowed without waiting
func (l *Limiter) Allow(role string) bool {
	if l.defaultRate <= 0 {
		return true
	}
	return l.getLimiter(role).Allow()
}

// getLimiter returns the rate limiter for a role
func (l *Limiter) getLimiter(role string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[role]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[role]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[role] = limiter

	return limiter
}

// SetRoleRate sets a custom rate limit for a specific role
func (l *Limiter) SetRoleRate(role string, dispatchesPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[role] = rate.NewLimiter(rate.Limit(dispatchesPerSecond), burst)
}
