package endpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when no endpoint of a server template is currently reachable
	ErrUnavailable = errors.New("no reachable endpoint")

	// ErrUnknownTemplate is returned when a server template is not configured
	ErrUnknownTemplate = errors.New("unknown server template")
)

// CommunicationError is a transport level failure talking to an endpoint.
// The resolver bans the endpoint when it sees one.
type CommunicationError struct {
	Endpoint string
	Err      error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication with %s failed: %v", e.Endpoint, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// RemoteServiceError is a well-formed error reply from the remote service
type RemoteServiceError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// IsRetryable reports whether err is a transient failure worth another attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var commErr *CommunicationError
	if errors.As(err, &commErr) {
		return true
	}
	var remoteErr *RemoteServiceError
	return errors.As(err, &remoteErr)
}
