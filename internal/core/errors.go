// Package core provides shared types, interfaces and the error taxonomy
// for the completion gateway and the media pipeline.
package core

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorType classifies a failure within the gateway or the media pipeline
type ErrorType string

const (
	// ErrorTypeClientUnavailable indicates a provider could not be used at
	// all (missing credential). Treated identically to a remote failure.
	ErrorTypeClientUnavailable ErrorType = "client_unavailable"
	// ErrorTypeRemote indicates a network/timeout/non-2xx/malformed
	// response from a provider.
	ErrorTypeRemote ErrorType = "remote_error"
	// ErrorTypeEmptyResponse indicates a technically successful but
	// empty/whitespace-only completion.
	ErrorTypeEmptyResponse ErrorType = "empty_response"
	// ErrorTypeRateLimited indicates the caller exceeded the sliding-window
	// quota. Does not consume a provider attempt.
	ErrorTypeRateLimited ErrorType = "rate_limited"
	// ErrorTypeInvalidRequest indicates a malformed client request.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	// ErrorTypeRender indicates the caption image stage failed (fatal).
	ErrorTypeRender ErrorType = "render_error"
	// ErrorTypeCompose indicates the video mux stage failed (fatal).
	ErrorTypeCompose ErrorType = "compose_error"
	// ErrorTypeSynthesis indicates narration synthesis failed (non-fatal,
	// downgrades the job to a silent video).
	ErrorTypeSynthesis ErrorType = "synthesis_error"
)

// GatewayError is the typed error value used across component boundaries.
// Provider-level errors never propagate as panics; they are converted to
// GatewayError values so fallback logic can run unconditionally.
type GatewayError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Provider string    `json:"provider,omitempty"`
	// Original error for diagnostics, never exposed to clients
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error type to an HTTP status code
func (e *GatewayError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeClientUnavailable, ErrorTypeRemote, ErrorTypeEmptyResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map for HTTP responses
func (e *GatewayError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewClientUnavailableError creates an error for a provider with no usable
// credential or client.
func NewClientUnavailableError(provider, message string) *GatewayError {
	return &GatewayError{Type: ErrorTypeClientUnavailable, Message: message, Provider: provider}
}

// NewRemoteError creates an error for a failed provider call
func NewRemoteError(provider, message string, err error) *GatewayError {
	return &GatewayError{Type: ErrorTypeRemote, Message: message, Provider: provider, Err: err}
}

// NewEmptyResponseError creates an error for an empty provider completion
func NewEmptyResponseError(provider string) *GatewayError {
	return &GatewayError{Type: ErrorTypeEmptyResponse, Message: "provider returned an empty completion", Provider: provider}
}

// NewRateLimitedError creates an error for an exhausted client quota
func NewRateLimitedError(message string) *GatewayError {
	return &GatewayError{Type: ErrorTypeRateLimited, Message: message}
}

// NewInvalidRequestError creates an error for a malformed client request
func NewInvalidRequestError(message string, err error) *GatewayError {
	return &GatewayError{Type: ErrorTypeInvalidRequest, Message: message, Err: err}
}

// NewRenderError creates a fatal caption-render error
func NewRenderError(message string, err error) *GatewayError {
	return &GatewayError{Type: ErrorTypeRender, Message: message, Err: err}
}

// NewComposeError creates a fatal video-composition error
func NewComposeError(message string, err error) *GatewayError {
	return &GatewayError{Type: ErrorTypeCompose, Message: message, Err: err}
}

// NewSynthesisError creates a non-fatal narration-synthesis error
func NewSynthesisError(provider, message string, err error) *GatewayError {
	return &GatewayError{Type: ErrorTypeSynthesis, Message: message, Provider: provider, Err: err}
}

// ParseProviderError converts a non-2xx provider response into a
// GatewayError, extracting the provider's error message when the body is
// the conventional {"error": {"message": ...}} JSON shape.
func ParseProviderError(provider string, statusCode int, body []byte) *GatewayError {
	var errorResponse struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	message := string(body)
	if err := json.Unmarshal(body, &errorResponse); err == nil && errorResponse.Error.Message != "" {
		message = errorResponse.Error.Message
	}

	return NewRemoteError(provider, fmt.Sprintf("status %d: %s", statusCode, message), nil)
}
