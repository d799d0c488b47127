package handlers

import (
	"time"

	"golang.org/x/time/rate"
)

// ══════════════════════════════════════════════════════════════════════════════
// RELOAD LIMITER
// Guards the reload endpoint. Every reload fans out to five backend
// requests, so a client polling in a loop is throttled here.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimitConfig holds configuration for the rate limiter.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate.
	RequestsPerMinute int

	// BurstSize is the number of requests allowed back to back.
	BurstSize int
}

// DefaultRateLimitConfig returns the reload limits used by serve mode.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 12,
		BurstSize:         3,
	}
}

// RateLimiter wraps a single rate.Limiter. The server has one user, so
// there is no per-client keying.
type RateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time
}

// NewRateLimiter creates a limiter with a full burst. A non-positive rate
// disables limiting.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.RequestsPerMinute <= 0 {
		return &RateLimiter{now: time.Now}
	}
	burst := config.BurstSize
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), burst),
		now:     time.Now,
	}
}

// Allow admits one request. On rejection it reports how long until the
// next request would be admitted.
func (rl *RateLimiter) Allow() (bool, time.Duration) {
	if rl == nil || rl.limiter == nil {
		return true, 0
	}

	now := rl.now()
	r := rl.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if d := r.DelayFrom(now); d > 0 {
		// A rejected request must not consume future capacity.
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}
