// Package websocket owns the transport layer of the streaming client: the
// Session type representing a single physical connection's lifetime, and the
// Router fanning decoded frames out to the consumer channel.
package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/veiloq/okx-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/okx-connector/pkg/logging"
)

const (
	dialTimeout      = 10 * time.Second
	writeTimeout     = 10 * time.Second
	outboundCapacity = 256
)

// SessionConfig holds the per-session transport settings.
type SessionConfig struct {
	// HeartbeatInterval is the tick on which pings are sent and unanswered
	// pings are detected.
	HeartbeatInterval time.Duration

	// MessageTimeout is the maximum silence on the inbound side before the
	// session is ended as stale.
	MessageTimeout time.Duration
}

// Session represents exactly one physical WebSocket connection, from
// establishment to termination. It runs three activities for its lifetime: a
// sender draining the outbound queue, a receiver decoding inbound frames, and
// a heartbeat monitor. All three terminate together; any write error, read
// error, server close or heartbeat timeout ends the whole session.
//
// A Session never reconnects. The supervisor owns that decision.
type Session struct {
	conn   *websocket.Conn
	config SessionConfig
	router *Router
	logger logging.Logger

	outbound chan outboundFrame

	mu          sync.Mutex
	lastMessage time.Time
	pingPending bool

	done     chan struct{}
	closeErr error
	once     sync.Once

	wg sync.WaitGroup
}

type outboundFrame struct {
	messageType int
	data        []byte
}

// Dial opens a WebSocket connection to url and starts the session's three
// activities. The context bounds the dial only; the session's lifetime is
// controlled through Close and the failure conditions.
func Dial(ctx context.Context, url string, config SessionConfig, router *Router, logger logging.Logger) (*Session, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, interfaces.NewConnectionError("dial", url, err)
	}

	s := &Session{
		conn:        conn,
		config:      config,
		router:      router,
		logger:      logger,
		outbound:    make(chan outboundFrame, outboundCapacity),
		lastMessage: time.Now(),
		done:        make(chan struct{}),
	}

	conn.SetPingHandler(func(appData string) error {
		s.markMessage()
		return s.enqueue(websocket.PongMessage, []byte(appData))
	})
	conn.SetPongHandler(func(string) error {
		s.markMessage()
		s.mu.Lock()
		s.pingPending = false
		s.mu.Unlock()
		return nil
	})

	s.wg.Add(3)
	go s.sendLoop()
	go s.readLoop()
	go s.heartbeatLoop()

	return s, nil
}

// Send queues a text frame for delivery. It fails immediately if the session
// has ended or the outbound queue is full; it never blocks the caller.
func (s *Session) Send(payload []byte) error {
	return s.enqueue(websocket.TextMessage, payload)
}

// Done is closed when the session has terminated, whatever the cause.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the failure that ended the session, or nil if the session is
// still live or was closed deliberately.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.closeErr
	default:
		return nil
	}
}

// LastMessageAt returns the time the last inbound frame (text or pong) was
// received.
func (s *Session) LastMessageAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessage
}

// Close ends the session deliberately. A close frame is attempted
// best-effort, all three activities are stopped, and Done is closed. Close is
// idempotent and safe to call concurrently with a failure.
func (s *Session) Close() {
	s.fail(nil)
	s.wg.Wait()
}

func (s *Session) enqueue(messageType int, data []byte) error {
	select {
	case <-s.done:
		return interfaces.ErrSessionEnded
	default:
	}
	select {
	case s.outbound <- outboundFrame{messageType: messageType, data: data}:
		return nil
	default:
		return interfaces.ErrOutboundQueueFull
	}
}

func (s *Session) markMessage() {
	s.mu.Lock()
	s.lastMessage = time.Now()
	s.mu.Unlock()
}

// fail records the terminating error, closes the socket so the reader
// unblocks, and releases the other two activities. The first caller wins.
func (s *Session) fail(err error) {
	s.once.Do(func() {
		s.closeErr = err
		if err == nil {
			// Deliberate close: tell the server before tearing down.
			deadline := time.Now().Add(time.Second)
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing"), deadline)
		}
		close(s.done)
		_ = s.conn.Close()
	})
}

// sendLoop is the sole writer to the socket. Every other component reaches
// the wire through the outbound queue, never directly.
func (s *Session) sendLoop() {
	defer s.wg.Done()
	for {
		select {
		case frame := <-s.outbound:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(frame.messageType, frame.data); err != nil {
				s.logger.Warn("websocket write failed", logging.Error(err))
				s.fail(interfaces.NewConnectionError("write", s.conn.RemoteAddr().String(), err))
				return
			}
		case <-s.done:
			return
		}
	}
}

// readLoop reads frames until the socket errors, the server closes, or the
// session is ended elsewhere. Text frames go to the router; control frames
// are handled by the gorilla handlers installed in Dial, which run inside
// ReadMessage.
func (s *Session) readLoop() {
	defer s.wg.Done()
	for {
		messageType, payload, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Info("websocket closed by server", logging.Error(err))
					s.fail(interfaces.ErrConnectionClosed)
				} else {
					s.logger.Warn("websocket read failed", logging.Error(err))
					s.fail(interfaces.NewConnectionError("read", s.conn.RemoteAddr().String(), err))
				}
			}
			return
		}

		if messageType == websocket.TextMessage {
			s.markMessage()
			s.router.Route(payload)
		}
	}
}

// heartbeatLoop sends a ping every HeartbeatInterval. If the previous ping is
// still unanswered when the tick fires, or the inbound side has been silent
// for MessageTimeout, the session is ended as a timeout failure.
func (s *Session) heartbeatLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			pending := s.pingPending
			stale := time.Since(s.lastMessage) >= s.config.MessageTimeout
			s.mu.Unlock()

			if stale {
				s.logger.Warn("message timeout, ending session",
					logging.Duration("timeout", s.config.MessageTimeout))
				s.fail(interfaces.ErrMessageTimeout)
				return
			}
			if pending {
				s.logger.Warn("ping not answered, ending session",
					logging.Duration("interval", s.config.HeartbeatInterval))
				s.fail(interfaces.ErrHeartbeatTimeout)
				return
			}

			if err := s.enqueue(websocket.PingMessage, nil); err != nil {
				if errors.Is(err, interfaces.ErrSessionEnded) {
					return
				}
				// A full outbound queue means the sender is wedged; the
				// monitor must end the session, not die alone.
				s.logger.Warn("unable to queue ping, ending session", logging.Error(err))
				s.fail(interfaces.ErrHeartbeatTimeout)
				return
			}
			s.mu.Lock()
			s.pingPending = true
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}
