// Package sdkerrors defines the error taxonomy shared by all SDK operations.
//
// Every failure surfaces as exactly one of four types: ValidationError for
// caller-supplied data that violates a precondition (always raised before any
// network or crypto work), CryptoError for serialization or cipher failures,
// APIError for HTTP transport or non-success responses, and WebSocketError
// for streaming connections that fail to establish or terminate abnormally.
// Nothing is retried internally.
package sdkerrors

import "fmt"

// ValidationError indicates caller-supplied input violated a precondition.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CryptoError indicates a serialization or cipher operation failed. It wraps
// the underlying cause.
type CryptoError struct {
	Message string
	Err     error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError wraps err with a message describing the failed operation.
func NewCryptoError(message string, err error) *CryptoError {
	return &CryptoError{Message: message, Err: err}
}

// APIError indicates an HTTP request failed, either at the transport level or
// with a non-success status. StatusCode is 0 when no response was received.
// Err carries the underlying transport or decode failure when one exists.
type APIError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (Status: %d)", msg, e.StatusCode)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates an APIError. Pass statusCode 0 when the request never
// produced a response.
func NewAPIError(message string, statusCode int) *APIError {
	return &APIError{Message: message, StatusCode: statusCode}
}

// WebSocketError indicates the streaming connection failed to establish or
// was terminated abnormally. A clean close by the peer is not an error.
type WebSocketError struct {
	Message string
	Err     error
}

func (e *WebSocketError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *WebSocketError) Unwrap() error {
	return e.Err
}

// NewWebSocketError wraps err with a message describing the connection failure.
func NewWebSocketError(message string, err error) *WebSocketError {
	return &WebSocketError{Message: message, Err: err}
}
