package poegate

import (
	"errors"
	"fmt"
)

// AuthenticationError indicates a missing or invalid upstream credential.
// It is fatal at startup and never retried.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// APIError indicates a failed upstream bot call. Message carries the
// classified, user-facing explanation; Err retains the underlying cause.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("poe api error: %s: %v", e.Message, e.Err)
	}
	return "poe api error: " + e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// FileHandlingError indicates an attachment that is missing, unreadable or
// over the configured size limit. Raised before any upstream call is made.
type FileHandlingError struct {
	Path string
	Err  error
}

func (e *FileHandlingError) Error() string {
	return fmt.Sprintf("file handling error: %s: %v", e.Path, e.Err)
}

func (e *FileHandlingError) Unwrap() error {
	return e.Err
}

// ErrorEnvelope is the client-visible error mapping the transport layer
// writes on failure.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Envelope kinds.
const (
	KindAuthentication = "authentication_error"
	KindAPI            = "poe_api_error"
	KindFileHandling   = "file_handling_error"
	KindInternal       = "internal_error"
)

// Classify buckets an error into the envelope taxonomy. Unknown errors map
// to the internal kind with their full type and message retained.
func Classify(err error) ErrorEnvelope {
	var (
		authErr *AuthenticationError
		apiErr  *APIError
		fileErr *FileHandlingError
	)
	switch {
	case errors.As(err, &authErr):
		return ErrorEnvelope{Error: KindAuthentication, Message: authErr.Message}
	case errors.As(err, &apiErr):
		return ErrorEnvelope{Error: KindAPI, Message: apiErr.Message}
	case errors.As(err, &fileErr):
		return ErrorEnvelope{Error: KindFileHandling, Message: fileErr.Error()}
	default:
		return ErrorEnvelope{Error: KindInternal, Message: fmt.Sprintf("%T: %v", err, err)}
	}
}
