package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "admin", cfg.WindowPolicy)
	assert.Equal(t, 30*time.Minute, cfg.FixedWindow)
	assert.True(t, cfg.CascadeDelete)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ATTENDANCE_WINDOW_POLICY", "fixed")
	t.Setenv("ATTENDANCE_FIXED_WINDOW", "45m")
	t.Setenv("TASK_DELETE_CASCADE", "false")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")

	cfg := Load()
	assert.Equal(t, "fixed", cfg.WindowPolicy)
	assert.Equal(t, 45*time.Minute, cfg.FixedWindow)
	assert.False(t, cfg.CascadeDelete)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("ATTENDANCE_FIXED_WINDOW", "not-a-duration")
	t.Setenv("TASK_DELETE_CASCADE", "maybe")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")

	cfg := Load()
	assert.Equal(t, 30*time.Minute, cfg.FixedWindow)
	assert.True(t, cfg.CascadeDelete)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}
