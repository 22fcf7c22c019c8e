package resilience

import (
	"sync"
	"time"
)

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	// Rate is the number of operations allowed per Window.
	// Default: 100
	Rate int

	// Burst is the maximum burst size.
	// Default: 10
	Burst int

	// Window is the refill window for Rate.
	// Default: 1 minute
	Window time.Duration
}

func (c RateLimiterConfig) withDefaults() RateLimiterConfig {
	if c.Rate <= 0 {
		c.Rate = 100
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

// perSecond returns the refill rate in tokens per second.
func (c RateLimiterConfig) perSecond() float64 {
	return float64(c.Rate) / c.Window.Seconds()
}

// RateLimiter implements a token bucket rate limiter.
type RateLimiter struct {
	config RateLimiterConfig

	mu          sync.Mutex
	tokens      float64
	lastRefresh time.Time
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	config = config.withDefaults()
	return &RateLimiter{
		config:      config,
		tokens:      float64(config.Burst),
		lastRefresh: time.Now(),
	}
}

// Allow reports whether one more operation is allowed now.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// RetryAfter returns how long until a token becomes available.
func (rl *RateLimiter) RetryAfter() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= 1 {
		return 0
	}
	missing := 1 - rl.tokens
	return time.Duration(missing / rl.config.perSecond() * float64(time.Second))
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset refills the bucket to capacity.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = float64(rl.config.Burst)
	rl.lastRefresh = time.Now()
}

func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefresh)
	rl.lastRefresh = now

	rl.tokens += elapsed.Seconds() * rl.config.perSecond()
	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}

// PerClientLimiter maintains one token bucket per client key.
//
// Idle buckets are dropped after they would have fully refilled, so
// the map does not grow without bound under churning client IPs.
type PerClientLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	lastScan time.Time
}

type clientLimiter struct {
	limiter  *RateLimiter
	lastSeen time.Time
}

// NewPerClientLimiter creates a keyed limiter.
func NewPerClientLimiter(config RateLimiterConfig) *PerClientLimiter {
	return &PerClientLimiter{
		config:   config.withDefaults(),
		limiters: make(map[string]*clientLimiter),
		lastScan: time.Now(),
	}
}

// Allow reports whether the client identified by key may proceed.
func (p *PerClientLimiter) Allow(key string) bool {
	return p.get(key).Allow()
}

// RetryAfter returns the wait hint for the client identified by key.
func (p *PerClientLimiter) RetryAfter(key string) time.Duration {
	return p.get(key).RetryAfter()
}

func (p *PerClientLimiter) get(key string) *RateLimiter {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Sub(p.lastScan) > p.config.Window {
		p.evictLocked(now)
		p.lastScan = now
	}

	entry, ok := p.limiters[key]
	if !ok {
		entry = &clientLimiter{limiter: NewRateLimiter(p.config)}
		p.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (p *PerClientLimiter) evictLocked(now time.Time) {
	// A bucket idle for two windows is back at full capacity and
	// indistinguishable from a fresh one.
	cutoff := now.Add(-2 * p.config.Window)
	for key, entry := range p.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(p.limiters, key)
		}
	}
}

// Size returns the number of tracked clients.
func (p *PerClientLimiter) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}
