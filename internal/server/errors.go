// Package server provides the HTTP control surface for the campaign composer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/prospects"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notReady        *campaign.NotReadyError
		invalidArtifact *campaign.InvalidArtifactError
		unknownStage    *campaign.UnknownStageError
		unknownSegment  *campaign.UnknownSegmentError
		outOfRange      *campaign.IndexOutOfRangeError
		execFailed      *campaign.ExecutionFailedError
		listNotFound    *prospects.ListNotFoundError
	)
	switch {
	case errors.As(err, &notReady):
		return http.StatusConflict
	case errors.As(err, &invalidArtifact):
		return http.StatusBadRequest
	case errors.As(err, &unknownStage),
		errors.As(err, &unknownSegment),
		errors.As(err, &outOfRange),
		errors.As(err, &listNotFound):
		return http.StatusNotFound
	case errors.As(err, &execFailed):
		return http.StatusBadGateway
	}

	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrUserNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
