package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUnderThreshold(t *testing.T) {
	rl := newLoginRateLimiter()

	for range maxFailures - 1 {
		rl.recordFailure("a@uni.edu")
		blocked, _ := rl.check("a@uni.edu")
		assert.False(t, blocked)
	}
}

func TestRateLimiterLocksAtThreshold(t *testing.T) {
	rl := newLoginRateLimiter()

	for range maxFailures {
		rl.recordFailure("a@uni.edu")
	}
	blocked, retryAfter := rl.check("a@uni.edu")
	require.True(t, blocked)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, baseLockout)
}

func TestRateLimiterBackoffGrows(t *testing.T) {
	rl := newLoginRateLimiter()

	for range maxFailures {
		rl.recordFailure("a@uni.edu")
	}
	_, first := rl.check("a@uni.edu")

	rl.recordFailure("a@uni.edu")
	_, second := rl.check("a@uni.edu")
	assert.Greater(t, second, first)

	// Backoff is capped.
	for range 20 {
		rl.recordFailure("a@uni.edu")
	}
	_, capped := rl.check("a@uni.edu")
	assert.LessOrEqual(t, capped, maxLockout)
}

func TestRateLimiterResetClears(t *testing.T) {
	rl := newLoginRateLimiter()

	for range maxFailures {
		rl.recordFailure("a@uni.edu")
	}
	rl.reset("a@uni.edu")
	blocked, _ := rl.check("a@uni.edu")
	assert.False(t, blocked)
}

func TestRateLimiterIsolatesAccounts(t *testing.T) {
	rl := newLoginRateLimiter()

	for range maxFailures {
		rl.recordFailure("a@uni.edu")
	}
	blocked, _ := rl.check("b@uni.edu")
	assert.False(t, blocked)
}

func TestRateLimiterExpiresStaleRecords(t *testing.T) {
	rl := newLoginRateLimiter()

	for range maxFailures {
		rl.recordFailure("a@uni.edu")
	}
	rl.mu.Lock()
	rl.attempts["a@uni.edu"].lastFailure = time.Now().Add(-2 * attemptExpiry)
	rl.mu.Unlock()

	blocked, _ := rl.check("a@uni.edu")
	assert.False(t, blocked)
}
