// Package delivery hands finished personalized emails to an external delivery engine.
// The pipeline does not track per-recipient delivery status beyond the engine's
// confirmation.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/campaign-composer/internal/types"
)

// DefaultTimeout bounds a single delivery request.
const DefaultTimeout = 60 * time.Second

// Request is the batch handed to the delivery engine.
type Request struct {
	ListID string                    `json:"list_id"`
	Emails []types.PersonalizedEmail `json:"emails"`
}

// Receipt is the delivery engine's confirmation.
type Receipt struct {
	Confirmation string `json:"confirmation"`
	Accepted     int    `json:"accepted"`
}

// Engine is the delivery collaborator contract.
type Engine interface {
	Deliver(ctx context.Context, req Request) (*Receipt, error)
}

// Error represents a failed delivery call.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delivery failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("delivery failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPEngine posts email batches to a delivery service endpoint.
type HTTPEngine struct {
	URL     string
	Client  *http.Client
	Headers map[string]string
}

// NewHTTPEngine creates a delivery engine targeting the given endpoint.
func NewHTTPEngine(url string) *HTTPEngine {
	return &HTTPEngine{
		URL:    url,
		Client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Deliver posts the batch and decodes the confirmation.
func (e *HTTPEngine) Deliver(ctx context.Context, req Request) (*Receipt, error) {
	if len(req.Emails) == 0 {
		return nil, &Error{Message: "no emails to deliver"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Message: "failed to encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range e.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		return nil, &Error{Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, &Error{Message: fmt.Sprintf("delivery service returned %d: %s", resp.StatusCode, errorMessage(respBody))}
	}

	var receipt Receipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, &Error{Message: "failed to decode receipt", Cause: err}
	}
	if receipt.Confirmation == "" {
		receipt.Confirmation = fmt.Sprintf("accepted %d emails", receipt.Accepted)
	}
	return &receipt, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(body)
}
