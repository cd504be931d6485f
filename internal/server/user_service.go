package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/campaign-composer/internal/config"
	"github.com/jonathan/campaign-composer/internal/db"
)

// UserService handles account registration and credential checks.
type UserService struct {
	db             *db.DB
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService.
func NewUserService(database *db.DB, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             database,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new user account with a hashed password.
func (s *UserService) Register(ctx context.Context, email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: email}
	}

	hash, err := s.passwordConfig.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.db.CreateUser(ctx, email, hash)
}

// Login verifies credentials and returns the matching user.
// Failures are reported uniformly so callers cannot distinguish an unknown
// email from a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, &ErrInvalidCredentials{}
	}

	if err := s.passwordConfig.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, &ErrInvalidCredentials{}
	}

	return user, nil
}
