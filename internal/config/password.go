package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// PasswordConfig holds password hashing configuration.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string
}

// NewPasswordConfig creates password configuration from environment variables.
// BCRYPT_COST defaults to 12. PASSWORD_PEPPER is optional.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost := 12
	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		c, err := strconv.Atoi(costStr)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		if c < 10 || c > 14 {
			return nil, fmt.Errorf("BCRYPT_COST must be between 10 and 14, got %d", c)
		}
		cost = c
	}

	return &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
	}, nil
}

// HashPassword hashes a password with bcrypt, applying the pepper if configured.
func (pc *PasswordConfig) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password+pc.Pepper), pc.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a password against a stored hash.
func (pc *PasswordConfig) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+pc.Pepper))
}
