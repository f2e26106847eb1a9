package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("reads the environment with fallbacks", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("JWT_SECRET", "signing-key")
		t.Setenv("SERVER_PORT", "9999")
		t.Setenv("SENTRY_DSN", "https://key@sentry.example.org/42")

		require.NoError(t, LoadConfig())
		assert.Equal(t, "9999", AppConfig.ServerPort)
		assert.Equal(t, "https://key@sentry.example.org/42", AppConfig.SentryDSN)
	})

	t.Run("requires the JWT secret", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("JWT_SECRET", "")

		assert.Error(t, LoadConfig())
	})

	t.Run("requires the database password", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "")
		t.Setenv("JWT_SECRET", "signing-key")

		assert.Error(t, LoadConfig())
	})
}

func TestMaskPassword(t *testing.T) {
	dsn := "host=localhost port=5432 user=postgres password=hunter2 dbname=app sslmode=disable"
	masked := maskPassword(dsn)

	assert.NotContains(t, masked, "hunter2")
	assert.Contains(t, masked, "password=*****")
}
