package websocket

import (
	"encoding/json"

	"github.com/veiloq/okx-connector/pkg/logging"
)

// defaultRouterCapacity bounds the consumer channel. The receive loop is
// never blocked on a slow consumer; frames beyond the bound are dropped and
// reported.
const defaultRouterCapacity = 1024

// Router is the fan-out from a session's decoded frames to the single
// outward consumer channel. A Router outlives the sessions that feed it: the
// same consumer channel spans reconnects.
type Router struct {
	out    chan any
	logger logging.Logger
}

// NewRouter creates a Router with the given consumer channel capacity. A
// capacity of zero or less uses the default.
func NewRouter(capacity int, logger logging.Logger) *Router {
	if capacity <= 0 {
		capacity = defaultRouterCapacity
	}
	return &Router{
		out:    make(chan any, capacity),
		logger: logger,
	}
}

// Route parses a raw text payload into a generic JSON value and forwards it
// to the consumer channel. A payload that fails to parse is logged and
// dropped; it does not end the session. A full consumer channel likewise
// drops the single frame rather than blocking the receive loop.
func (r *Router) Route(payload []byte) {
	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		r.logger.Warn("dropping unparseable frame", logging.Error(err))
		return
	}

	select {
	case r.out <- value:
	default:
		r.logger.Warn("consumer channel full, dropping frame")
	}
}

// Messages returns the consumer channel. Frames from one session are
// delivered in the order received; no ordering holds across a reconnect
// boundary.
func (r *Router) Messages() <-chan any {
	return r.out
}

// CloseOutput closes the consumer channel. Called exactly once by the
// supervisor when it stops.
func (r *Router) CloseOutput() {
	close(r.out)
}
