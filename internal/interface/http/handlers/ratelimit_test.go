package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 6, BurstSize: 2})
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow()
	assert.True(t, ok)
	ok, _ = rl.Allow()
	assert.True(t, ok)

	ok, wait := rl.Allow()
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, wait)

	// Rejections are cancelled, so repeated polling does not push the
	// next slot further out.
	ok, wait = rl.Allow()
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, wait)

	now = now.Add(10 * time.Second)
	ok, _ = rl.Allow()
	assert.True(t, ok)

	ok, wait = rl.Allow()
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, wait)
}

func TestRateLimiter_PartialRefillWait(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 1})
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow()
	assert.True(t, ok)

	now = now.Add(400 * time.Millisecond)
	ok, wait := rl.Allow()
	assert.False(t, ok)
	assert.InDelta(t, float64(600*time.Millisecond), float64(wait), float64(time.Millisecond))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	for i := 0; i < 10; i++ {
		ok, _ := rl.Allow()
		assert.True(t, ok)
	}

	var nilLimiter *RateLimiter
	ok, _ := nilLimiter.Allow()
	assert.True(t, ok)
}
