package publish

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a publish failure by who is at fault
type Kind string

const (
	// KindClient is a malformed or incomplete request (4xx)
	KindClient Kind = "client"

	// KindConfiguration is missing or unparsable deployment configuration (5xx)
	KindConfiguration Kind = "configuration"

	// KindAuthentication is a failed credential exchange with Drive (5xx)
	KindAuthentication Kind = "authentication"

	// KindUpstream is a failed create or permission call after authentication (5xx)
	KindUpstream Kind = "upstream"
)

var (
	// ErrMissingFields is returned when jsonData or filename is absent
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidJSON is returned when jsonData is not a JSON document
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrMethodNotAllowed is returned for methods other than POST and OPTIONS
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrNotConfigured is returned when no credential scheme can be selected
	ErrNotConfigured = errors.New("server not configured")

	// ErrInvalidCredentialFormat is returned when a credential document cannot be parsed
	ErrInvalidCredentialFormat = errors.New("invalid credentials format")

	// ErrNotPublished is returned when a file was created but public read could not be granted
	ErrNotPublished = errors.New("file created but not published")
)

// Error is a classified publish failure. Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status
func (e *Error) HTTPStatus() int {
	if e.Kind == KindClient {
		if errors.Is(e.Err, ErrMethodNotAllowed) {
			return http.StatusMethodNotAllowed
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NewClientError creates a caller-fault error
func NewClientError(message string, err error) *Error {
	return &Error{Kind: KindClient, Message: message, Err: err}
}

// NewConfigurationError creates an operator-fault error
func NewConfigurationError(message string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Err: err}
}

// NewAuthenticationError wraps a failed credential exchange, passing its message through
func NewAuthenticationError(err error) *Error {
	return &Error{Kind: KindAuthentication, Message: err.Error(), Err: err}
}

// NewUpstreamError wraps a failed Drive call, passing its message through
func NewUpstreamError(err error) *Error {
	return &Error{Kind: KindUpstream, Message: err.Error(), Err: err}
}

// AsError extracts a classified error from err, treating anything unclassified as upstream
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return NewUpstreamError(err)
}
