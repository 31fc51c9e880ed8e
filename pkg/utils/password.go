package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the account base was hashed with.
const bcryptCost = 10

// passwordSymbols is the punctuation set a strong password must draw from.
const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// The comparison is constant-time inside bcrypt.
func VerifyPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// PasswordCheck is the outcome of a strength validation. Message is safe to
// surface to the client verbatim.
type PasswordCheck struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message,omitempty"`
}

// ValidatePassword enforces the registration strength policy: at least 8
// characters with an uppercase letter, a lowercase letter, a digit, and a
// symbol from the fixed punctuation set.
func ValidatePassword(password string) PasswordCheck {
	switch {
	case len(password) < 8:
		return PasswordCheck{Message: "password must be at least 8 characters long"}
	case !strings.ContainsFunc(password, unicode.IsUpper):
		return PasswordCheck{Message: "password must contain an uppercase letter"}
	case !strings.ContainsFunc(password, unicode.IsLower):
		return PasswordCheck{Message: "password must contain a lowercase letter"}
	case !strings.ContainsFunc(password, unicode.IsDigit):
		return PasswordCheck{Message: "password must contain a digit"}
	case !strings.ContainsAny(password, passwordSymbols):
		return PasswordCheck{Message: "password must contain a special character"}
	}
	return PasswordCheck{IsValid: true}
}

// ValidateUsername enforces the minimum username length.
func ValidateUsername(username string) bool {
	return len(strings.TrimSpace(username)) >= 3
}

// ValidateEmail checks the basic local@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
