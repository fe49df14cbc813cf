package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the salt rounds used when the existing password hashes
// were created; changing it only affects newly hashed passwords.
const bcryptCost = 10

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// HashPassword hashes a password with bcrypt (cost 10). Called on every
// create and on every update where the password changed.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies an entered password against the stored hash.
// bcrypt's comparison is constant-time.
func CheckPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidatePasswordComplexity returns the list of human-readable reasons a
// password fails the policy. An empty slice means the password is accepted.
func ValidatePasswordComplexity(password string) []string {
	var reasons []string

	if len(password) < 8 {
		reasons = append(reasons, "Password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		reasons = append(reasons, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		reasons = append(reasons, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "Password must contain at least one number")
	}
	if !hasSymbol {
		reasons = append(reasons, "Password must contain at least one special character")
	}

	return reasons
}
