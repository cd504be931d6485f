// Package middleware gates the campaign control surface behind bearer-token auth.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed context key so values set here cannot collide with other
// packages' keys.
type ContextKey string

const userIDKey ContextKey = "userID"

// TokenValidator validates a bearer token and returns its claims. Defined here rather
// than importing the JWT service so the package depends only on what it checks.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter yields the authenticated user id carried by validated claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// AuthMiddleware rejects requests without a valid bearer token and stashes the
// authenticated user id on the request context for handlers downstream. Every failure
// mode answers 401 with no detail; the caller learns nothing about why.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.GetUserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header. The scheme is matched
// case-insensitively per RFC 7235.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetUserID returns the authenticated user id placed on the context by AuthMiddleware.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user ID not found in request context")
	}
	return userID, nil
}
