package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, now *time.Time) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: 5 * time.Minute,
	})
	rl.now = func() time.Time { return *now }
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_LocksAfterMaxAttempts(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	for i := 0; i < 2; i++ {
		locked, _ := rl.RecordFailure("10.0.0.1")
		assert.False(t, locked)
	}
	locked, retry := rl.RecordFailure("10.0.0.1")
	assert.True(t, locked)
	assert.Equal(t, 5*time.Minute, retry)

	allowed, _ := rl.Allow("10.0.0.1")
	assert.False(t, allowed)
	allowed, _ = rl.Allow("10.0.0.2")
	assert.True(t, allowed, "other addresses are unaffected")

	now = now.Add(6 * time.Minute)
	allowed, _ = rl.Allow("10.0.0.1")
	assert.True(t, allowed, "lockout expires")
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("10.0.0.1")
	rl.RecordFailure("10.0.0.1")
	now = now.Add(2 * time.Minute)

	locked, _ := rl.RecordFailure("10.0.0.1")
	assert.False(t, locked)
}

func TestRateLimiter_SuccessClearsAndCleanupDrops(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("10.0.0.1")
	rl.RecordSuccess("10.0.0.1")
	assert.Empty(t, rl.attempts)

	rl.RecordFailure("10.0.0.2")
	now = now.Add(time.Hour)
	rl.cleanup()
	assert.Empty(t, rl.attempts)

	// Stop twice is safe.
	rl.Stop()
}
