package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// JWTConfig holds JWT signing configuration.
type JWTConfig struct {
	Secret     []byte
	Expiration time.Duration
}

// NewJWTConfig creates JWT configuration from environment variables.
// JWT_SECRET is required. JWT_EXPIRATION_HOURS defaults to 24.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(secret))
	}

	expiration := 24 * time.Hour
	if hoursStr := os.Getenv("JWT_EXPIRATION_HOURS"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
		}
		if hours < 1 || hours > 168 {
			return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be between 1 and 168, got %d", hours)
		}
		expiration = time.Duration(hours) * time.Hour
	}

	return &JWTConfig{
		Secret:     []byte(secret),
		Expiration: expiration,
	}, nil
}
