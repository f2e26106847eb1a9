package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		parsed, err := ParseDate("2024-03-31")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		_, err := ParseDate("31/03/2024")
		assert.Error(t, err)

		_, err = ParseDate("2024-03-31T00:00:00Z")
		assert.Error(t, err)
	})
}

func TestParseOptionalDate(t *testing.T) {
	t.Run("empty yields nil", func(t *testing.T) {
		parsed, err := ParseOptionalDate("")
		require.NoError(t, err)
		assert.Nil(t, parsed)
	})

	t.Run("valid date", func(t *testing.T) {
		parsed, err := ParseOptionalDate("2025-04-01")
		require.NoError(t, err)
		require.NotNil(t, parsed)
		assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), *parsed)
	})

	t.Run("garbage is an error, not nil", func(t *testing.T) {
		_, err := ParseOptionalDate("soon")
		assert.Error(t, err)
	})
}

func TestParseUint(t *testing.T) {
	assert.Equal(t, uint(42), ParseUint("42"))
	assert.Equal(t, uint(0), ParseUint("not-a-number"))
	assert.Equal(t, uint(0), ParseUint("-1"))
}

func TestGenerateRateLimitKey(t *testing.T) {
	key := GenerateRateLimitKey("203.0.113.9", "/auth/login")
	assert.Equal(t, "rl:203.0.113.9:/auth/login", key)
}

func TestLogHelpersWithoutSentryDSN(t *testing.T) {
	// Without sentry.Init the capture and breadcrumb calls must degrade to
	// no-ops; the handlers call these on every 500-class path.
	assert.NotPanics(t, func() {
		LogEvent("unit_event", map[string]interface{}{"key": "value"})
		LogError("unit_error", errors.New("boom"), map[string]interface{}{"key": "value"})
		LogError("unit_error_no_context", errors.New("boom"), nil)
	})
}
