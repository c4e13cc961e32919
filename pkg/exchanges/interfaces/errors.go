package interfaces

import (
	"errors"
	"fmt"
)

// Standardized errors returned by streaming clients. Connection, protocol and
// timeout failures are recoverable: they end the current session and are
// retried by the supervisor, never surfaced to the caller as a hard failure.
// Authentication failures are terminal.
var (
	// ErrAlreadyRunning is returned by Start when the client is already
	// running and Stop has not been called in between.
	ErrAlreadyRunning = errors.New("streaming client already running")

	// ErrAuthenticationRequired is returned when a private endpoint is used
	// without credentials. This error is not retried.
	ErrAuthenticationRequired = errors.New("authentication required for private endpoint")

	// ErrInvalidCredentials is returned when credentials are present but
	// signing fails or the exchange rejects them.
	ErrInvalidCredentials = errors.New("invalid API credentials")

	// ErrSubscriptionFailed is returned when a subscribe or unsubscribe frame
	// cannot be pushed to the live session. The registry still holds the
	// intent and the subscription is replayed on the next connect.
	ErrSubscriptionFailed = errors.New("failed to send subscription request")

	// ErrHeartbeatTimeout indicates a ping went unanswered for a full
	// heartbeat interval.
	ErrHeartbeatTimeout = errors.New("heartbeat ping not answered")

	// ErrMessageTimeout indicates no inbound message arrived within the
	// configured message timeout.
	ErrMessageTimeout = errors.New("no message received within timeout")

	// ErrConnectionClosed indicates the server closed the connection or the
	// stream reached EOF.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrSessionEnded indicates the session terminated for a reason already
	// reported through its Err method.
	ErrSessionEnded = errors.New("session ended")

	// ErrOutboundQueueFull indicates the session's outbound queue is at
	// capacity and the frame was not enqueued.
	ErrOutboundQueueFull = errors.New("outbound queue full")
)

// ConnectionError wraps a transport-level failure with the endpoint it
// occurred against.
type ConnectionError struct {
	URL string
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s failed for %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a ConnectionError for the given operation and
// endpoint.
func NewConnectionError(op, url string, err error) error {
	return &ConnectionError{URL: url, Op: op, Err: err}
}
