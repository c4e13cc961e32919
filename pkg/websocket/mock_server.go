package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MockServer is an in-process WebSocket endpoint for tests. It records every
// text frame received, can broadcast frames to connected clients, and can be
// told to reject new connections, drop live ones, or go silent (stop reading,
// so client pings are never answered).
type MockServer struct {
	server *httptest.Server
	url    string

	done chan struct{}

	mu          sync.Mutex
	connections map[*websocket.Conn]struct{}
	received    [][]byte
	onConnect   func(*websocket.Conn)

	rejectConnections bool
	silent            bool
}

// NewMockServer starts a mock WebSocket server. Callers own its lifetime and
// must Close it.
func NewMockServer() *MockServer {
	m := &MockServer{
		done:        make(chan struct{}),
		connections: make(map[*websocket.Conn]struct{}),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	m.url = "ws" + strings.TrimPrefix(m.server.URL, "http")
	return m
}

// URL returns the ws:// address of the server.
func (m *MockServer) URL() string {
	return m.url
}

// Close shuts the server down and drops all connections.
func (m *MockServer) Close() {
	close(m.done)
	m.server.Close()
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.connections {
		_ = conn.Close()
	}
}

// SetRejectConnections makes the server refuse subsequent upgrade requests.
func (m *MockServer) SetRejectConnections(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectConnections = reject
}

// SetSilent stops the server from reading client frames. Client pings go
// unanswered, which lets tests exercise the heartbeat timeout path.
func (m *MockServer) SetSilent(silent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silent = silent
}

// OnConnect registers a callback invoked for each new connection.
func (m *MockServer) OnConnect(fn func(*websocket.Conn)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnect = fn
}

// DropConnections forcibly closes every live connection without a close
// handshake.
func (m *MockServer) DropConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.connections {
		_ = conn.Close()
		delete(m.connections, conn)
	}
}

// Broadcast sends a text frame to all connected clients.
func (m *MockServer) Broadcast(payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = conn.Close()
			delete(m.connections, conn)
		}
	}
}

// Received returns a copy of all text frames received so far, across all
// connections, in arrival order.
func (m *MockServer) Received() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.received))
	copy(out, m.received)
	return out
}

// ClearReceived empties the recorded frame list.
func (m *MockServer) ClearReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = nil
}

// ConnectionCount returns the number of live connections.
func (m *MockServer) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	reject := m.rejectConnections
	onConnect := m.onConnect
	m.mu.Unlock()

	if reject {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	// Gorilla answers pings from inside ReadMessage, so a connection blocked
	// reading would keep ponging even when the server is meant to be silent.
	// Swallow pings ourselves while silent is set.
	conn.SetPingHandler(func(appData string) error {
		m.mu.Lock()
		silent := m.silent
		m.mu.Unlock()
		if silent {
			return nil
		}
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	m.mu.Lock()
	m.connections[conn] = struct{}{}
	m.mu.Unlock()

	if onConnect != nil {
		onConnect(conn)
	}

	defer func() {
		m.mu.Lock()
		delete(m.connections, conn)
		m.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		m.mu.Lock()
		silent := m.silent
		m.mu.Unlock()
		if silent {
			// Stop reading entirely; inbound pings pile up unanswered.
			<-m.done
			return
		}

		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType == websocket.TextMessage {
			m.mu.Lock()
			m.received = append(m.received, payload)
			m.mu.Unlock()
		}
	}
}
