package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	type loginForm struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
		Level    string `validate:"omitempty,oneof=team organisation"`
	}

	t.Run("valid input passes", func(t *testing.T) {
		err := ValidateStruct(loginForm{Email: "ops@example.org", Password: "correct horse"})
		assert.NoError(t, err)
	})

	t.Run("messages name the failing fields", func(t *testing.T) {
		err := ValidateStruct(loginForm{Email: "not-an-email", Password: "short"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "password must be at least 8 characters")
	})

	t.Run("oneof lists the options", func(t *testing.T) {
		err := ValidateStruct(loginForm{Email: "ops@example.org", Password: "correct horse", Level: "galaxy"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "level must be one of: team organisation")
	})
}
