package handlers

import (
	"testing"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsMatch(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("Abcdef1!")
	require.NoError(t, err)
	user := &models.User{Password: hash}

	assert.True(t, credentialsMatch(user, "Abcdef1!"))
	assert.False(t, credentialsMatch(user, "WrongPass1!"))
	assert.False(t, credentialsMatch(user, ""))

	// The stored hash itself must never pass as the entered password; this
	// guards the argument order of the underlying bcrypt comparison.
	assert.False(t, credentialsMatch(user, hash))
}
