package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for server responses that cannot be used.
// These can be checked using errors.Is().
var (
	// ErrServerHTML is returned when a JSON endpoint answers with an HTML page,
	// which usually means the client points at the web app instead of the
	// server.
	ErrServerHTML = errors.New("Server returned HTML instead of JSON. You may be hitting the wrong URL (e.g. web app instead of server). Expected POST /conversations on the server (default " + DefaultServerURL + ").")

	// ErrInvalidJSON is returned when a response body is not valid JSON.
	ErrInvalidJSON = errors.New("Server returned invalid JSON")

	// ErrNoBody is returned when a streaming response has no body.
	ErrNoBody = errors.New("No response body")

	// ErrServerUnavailable is returned when the health check fails.
	ErrServerUnavailable = errors.New("server unavailable")

	// ErrTestTimeout is returned when a connection test exceeds its deadline.
	ErrTestTimeout = errors.New("Connection test timed out")
)

// RequestError is a non-2xx response from the server.
type RequestError struct {
	Operation string
	Status    int
	Body      string
}

// OpInit names the workspace initialisation request, which reports failures
// as "Init failed: <body>".
const OpInit = "init"

func (e *RequestError) Error() string {
	if e.Operation == OpInit {
		return "Init failed: " + e.Body
	}
	return fmt.Sprintf("Failed to %s: %s", e.Operation, e.Body)
}

// NewRequestError creates a RequestError for the given operation.
func NewRequestError(operation string, status int, body string) *RequestError {
	return &RequestError{
		Operation: operation,
		Status:    status,
		Body:      body,
	}
}

// previewLen caps the body excerpt carried by ErrInvalidJSON.
const previewLen = 200

func invalidJSON(body []byte) error {
	preview := []rune(string(body))
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	return fmt.Errorf("%w: %s", ErrInvalidJSON, string(preview))
}
