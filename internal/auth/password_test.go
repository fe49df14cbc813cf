package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Abcdef1!")
	require.NoError(t, err)
	require.NotEqual(t, "Abcdef1!", hash)

	assert.True(t, CheckPassword("Abcdef1!", hash))
	assert.False(t, CheckPassword("abcdef1!", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestValidatePasswordComplexity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		reasons  int
	}{
		{"valid", "Abcdef1!", 0},
		{"short lowercase only", "abc", 4}, // length, uppercase, digit, symbol
		{"missing symbol", "Abcdefg1", 1},
		{"missing digit", "Abcdefg!", 1},
		{"missing uppercase", "abcdefg1!", 1},
		{"missing lowercase", "ABCDEFG1!", 1},
		{"empty", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasons := ValidatePasswordComplexity(tt.password)
			assert.Len(t, reasons, tt.reasons, "reasons: %v", reasons)
		})
	}
}

func TestValidatePasswordComplexity_ReasonsAreSpecific(t *testing.T) {
	t.Parallel()

	reasons := ValidatePasswordComplexity("abc")
	require.Len(t, reasons, 4)
	assert.Contains(t, reasons, "Password must be at least 8 characters long")
	assert.Contains(t, reasons, "Password must contain at least one uppercase letter")
	assert.Contains(t, reasons, "Password must contain at least one number")
	assert.Contains(t, reasons, "Password must contain at least one special character")
}
