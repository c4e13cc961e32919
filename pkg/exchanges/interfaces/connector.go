// Package interfaces defines the contracts shared by exchange connector
// implementations: the streaming client surface, connection states, request
// signing, and standardized errors.
package interfaces

// ConnectionState describes the lifecycle of a streaming client's connection.
// Exactly one state is current at any instant. The state is owned by the
// connection supervisor; everything else reads it.
type ConnectionState int

const (
	// Disconnected is the initial state, the state after Stop, and the state
	// between a session ending and a reconnect attempt starting.
	Disconnected ConnectionState = iota

	// Connecting means an establish attempt is in flight.
	Connecting

	// Connected means a session is live and frames are flowing.
	Connected

	// Reconnecting means the previous session ended and the client is waiting
	// out the backoff delay before the next attempt.
	Reconnecting
)

// String returns the lowercase name of the state.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Signer produces an authentication signature from a secret, a timestamp and
// the canonical request triple (method, path, body). Exchange packages supply
// a concrete implementation; the streaming core only consumes it.
type Signer func(secret, timestamp, method, path, body string) (string, error)

// StreamingConnector is the caller-facing surface of a resilient streaming
// client. Implementations keep the set of logical subscriptions alive across
// reconnects: subscriptions are intents, not connection artifacts.
type StreamingConnector interface {
	// Start launches the connection supervisor and returns the consumer
	// channel of decoded frames. It fails with ErrAlreadyRunning if called
	// twice without an intervening Stop, and with ErrAuthenticationRequired
	// if the endpoint is private and no credentials were provided.
	Start() (<-chan any, error)

	// Stop ends the background loop, aborts any live session, and closes the
	// consumer channel. It is idempotent.
	Stop()

	// State returns the current connection state.
	State() ConnectionState

	// IsHealthy reports whether the client is connected and has received a
	// message recently enough.
	IsHealthy() bool
}
