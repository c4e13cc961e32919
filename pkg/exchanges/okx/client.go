package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/veiloq/okx-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/okx-connector/pkg/logging"
	"github.com/veiloq/okx-connector/pkg/ratelimit"
	"github.com/veiloq/okx-connector/pkg/websocket"
)

// ReconnectPolicy controls the supervisor's failure handling. It is immutable
// after the client is constructed.
type ReconnectPolicy struct {
	// Enabled turns automatic reconnection on. When false the client stops
	// after the first session ends.
	Enabled bool

	// Interval is the base delay before the first reconnect attempt, and the
	// value the backoff resets to after any successful connection.
	Interval time.Duration

	// MaxAttempts bounds consecutive failed attempts. The default is
	// effectively unlimited.
	MaxAttempts int

	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// HeartbeatInterval is the ping cadence of each session.
	HeartbeatInterval time.Duration

	// MessageTimeout is the maximum inbound silence before a session is
	// considered dead, and the staleness bound used by IsHealthy.
	MessageTimeout time.Duration
}

// DefaultReconnectPolicy returns the policy used by the stock constructors:
// unlimited attempts, 3s base delay growing by 1.5x up to 6s, 3s heartbeats
// and a 6s message timeout.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Enabled:           true,
		Interval:          3 * time.Second,
		MaxAttempts:       math.MaxInt,
		BackoffFactor:     1.5,
		MaxBackoff:        6 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		MessageTimeout:    6 * time.Second,
	}
}

// Client is a resilient streaming client for one OKX WebSocket endpoint. It
// keeps the caller's logical subscriptions alive across reconnects: the
// registry records intent, every successful connect replays it, and the
// consumer channel spans sessions with no explicit disconnect marker.
//
// At most one session is live at a time. The connection state transitions
// Disconnected → Connecting → Connected → Disconnected → Reconnecting →
// Connecting → …, with Stop forcing Disconnected from anywhere.
type Client struct {
	pool        *endpointPool
	private     bool
	creds       *Credentials
	policy      ReconnectPolicy
	registry    *Registry
	logger      logging.Logger
	dialLimiter ratelimit.RateLimiter

	mu       sync.Mutex
	running  bool
	state    interfaces.ConnectionState
	session  *websocket.Session
	router   *websocket.Router
	cancel   context.CancelFunc
	loopDone chan struct{}
}

var _ interfaces.StreamingConnector = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger replaces the default logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithReconnectPolicy replaces the default reconnect policy.
func WithReconnectPolicy(policy ReconnectPolicy) Option {
	return func(c *Client) { c.policy = policy }
}

// WithEndpoints replaces the generated candidate pool with an explicit
// ordered list (primary first, then fallbacks). Invalid entries are ignored.
func WithEndpoints(urls ...string) Option {
	return func(c *Client) {
		p := &endpointPool{}
		for _, u := range urls {
			p.add(u)
		}
		if len(p.urls) > 0 {
			c.pool = p
		}
	}
}

// WithDialLimiter replaces the limiter pacing connection attempts. A nil
// limiter disables pacing.
func WithDialLimiter(limiter ratelimit.RateLimiter) Option {
	return func(c *Client) { c.dialLimiter = limiter }
}

// NewPublicClient creates a client for the public endpoint. No credentials
// are required.
func NewPublicClient(opts ...Option) *Client {
	return NewClient(PublicWebsocketURL(), nil, opts...)
}

// NewPrivateClient creates a client for the private endpoint. The login frame
// is sent immediately after each connect.
func NewPrivateClient(creds Credentials, opts ...Option) *Client {
	return NewClient(PrivateWebsocketURL(), &creds, opts...)
}

// NewClient creates a client for an arbitrary endpoint. Credentials may be
// nil for public endpoints; a non-nil value marks the endpoint private.
func NewClient(url string, creds *Credentials, opts ...Option) *Client {
	c := &Client{
		pool:     newEndpointPool(url),
		private:  creds != nil,
		creds:    creds,
		policy:   DefaultReconnectPolicy(),
		registry: NewRegistry(),
		logger:   logging.NewLogger(),
		dialLimiter: ratelimit.NewTokenBucketLimiter(ratelimit.Rate{
			Limit:    5,
			Interval: time.Second,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the connection supervisor and returns the consumer channel
// of decoded frames. It fails with ErrAlreadyRunning when called twice
// without an intervening Stop, and with ErrAuthenticationRequired when the
// endpoint is private and no credentials were supplied; neither cause enters
// the reconnect loop.
func (c *Client) Start() (<-chan any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil, interfaces.ErrAlreadyRunning
	}
	if c.private && c.creds == nil {
		return nil, interfaces.ErrAuthenticationRequired
	}

	ctx, cancel := context.WithCancel(context.Background())
	router := websocket.NewRouter(0, c.logger)

	c.running = true
	c.cancel = cancel
	c.router = router
	c.loopDone = make(chan struct{})

	go c.run(ctx, router)

	c.logger.Info("streaming client started",
		logging.Int("candidates", c.pool.size()))
	return router.Messages(), nil
}

// Stop ends the background loop, aborts the live session if any, and closes
// the consumer channel. It is idempotent and returns only once no background
// work remains.
func (c *Client) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	done := c.loopDone
	c.mu.Unlock()

	cancel()
	<-done
	c.logger.Info("streaming client stopped")
}

// Subscribe records the subscription intent and, if a session is live, pushes
// the subscribe request immediately. A push failure is returned but does not
// roll back the registry: the subscription is replayed on the next successful
// connect regardless.
func (c *Client) Subscribe(channel Channel, args Args) error {
	sub := Subscription{Channel: channel, Args: args}
	c.registry.Upsert(sub)

	sess := c.liveSession()
	if sess == nil {
		c.logger.Debug("subscription recorded for replay",
			logging.String("key", sub.Key().String()))
		return nil
	}
	if err := c.sendSubscription(sess, opSubscribe, channel, args); err != nil {
		c.logger.Warn("subscribe push failed, will replay on reconnect",
			logging.String("key", sub.Key().String()),
			logging.Error(err))
		return fmt.Errorf("%w: %v", interfaces.ErrSubscriptionFailed, err)
	}
	return nil
}

// Unsubscribe removes the intent for (channel, instId) and, if a session is
// live, pushes the unsubscribe request. The key is absent from every later
// replay whether or not the push succeeds. Unsubscribing a key that was never
// subscribed is a no-op.
func (c *Client) Unsubscribe(channel Channel, args Args) error {
	sub := Subscription{Channel: channel, Args: args}
	c.registry.Remove(sub.Key())

	sess := c.liveSession()
	if sess == nil {
		return nil
	}
	if err := c.sendSubscription(sess, opUnsubscribe, channel, args); err != nil {
		c.logger.Warn("unsubscribe push failed",
			logging.String("key", sub.Key().String()),
			logging.Error(err))
		return fmt.Errorf("%w: %v", interfaces.ErrSubscriptionFailed, err)
	}
	return nil
}

// State returns the current connection state.
func (c *Client) State() interfaces.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsHealthy reports whether the client is connected and received an inbound
// message within the policy's message timeout.
func (c *Client) IsHealthy() bool {
	c.mu.Lock()
	state := c.state
	sess := c.session
	c.mu.Unlock()

	if state != interfaces.Connected || sess == nil {
		return false
	}
	return time.Since(sess.LastMessageAt()) < c.policy.MessageTimeout
}

// ActiveSubscriptions returns the number of recorded subscription intents.
func (c *Client) ActiveSubscriptions() int {
	return c.registry.Len()
}

// Endpoints returns the ordered candidate pool, primary first.
func (c *Client) Endpoints() []string {
	return c.pool.candidates()
}

// run is the supervisor loop: connect, replay, run the session to
// completion, back off, reconnect. It exits when the context is cancelled,
// reconnection is disabled, or attempts are exhausted; the consumer channel
// is closed exactly once on the way out.
func (c *Client) run(ctx context.Context, router *websocket.Router) {
	defer close(c.loopDone)
	defer router.CloseOutput()
	defer c.setState(interfaces.Disconnected)

	attempts := 0
	backoff := c.policy.Interval

	for {
		if ctx.Err() != nil {
			return
		}
		if c.dialLimiter != nil {
			if err := c.dialLimiter.Wait(ctx); err != nil {
				return
			}
		}

		url := c.pool.current()
		c.setState(interfaces.Connecting)
		c.logger.Info("connecting",
			logging.String("url", url),
			logging.Int("attempt", attempts+1))

		sess, err := c.establish(ctx, url, router)
		if err != nil {
			c.logger.Error("connection failed",
				logging.String("url", url),
				logging.Error(err))
			c.setState(interfaces.Disconnected)
		} else {
			c.logger.Info("connected", logging.String("url", url))
			c.setState(interfaces.Connected)
			c.setSession(sess)
			attempts = 0
			backoff = c.policy.Interval

			c.replay(sess)

			select {
			case <-sess.Done():
				if serr := sess.Err(); serr != nil {
					c.logger.Warn("session ended", logging.Error(serr))
				}
				// Wait out the session's goroutines; a read must not
				// outlive this iteration and race the consumer channel.
				sess.Close()
			case <-ctx.Done():
				sess.Close()
			}
			c.setSession(nil)
			c.setState(interfaces.Disconnected)
		}

		if ctx.Err() != nil {
			return
		}
		if !c.policy.Enabled || attempts >= c.policy.MaxAttempts {
			c.logger.Error("reconnection disabled or attempts exhausted, giving up",
				logging.Int("attempts", attempts))
			return
		}

		attempts++
		c.setState(interfaces.Reconnecting)
		c.pool.advance()
		c.logger.Warn("reconnecting",
			logging.Int("attempt", attempts),
			logging.Duration("delay", backoff),
			logging.String("next", c.pool.current()))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}

		backoff = nextBackoff(backoff, c.policy)
	}
}

// nextBackoff returns the delay for the attempt after one that waited current:
// multiplied by the policy factor and capped at the policy maximum.
func nextBackoff(current time.Duration, policy ReconnectPolicy) time.Duration {
	next := time.Duration(float64(current) * policy.BackoffFactor)
	if next > policy.MaxBackoff {
		next = policy.MaxBackoff
	}
	return next
}

// establish opens one session and, for private endpoints, sends the login
// frame immediately. The login is fire-and-forget: replay does not wait for
// the login acknowledgment, matching the exchange's observed tolerance for
// early subscribe requests.
func (c *Client) establish(ctx context.Context, url string, router *websocket.Router) (*websocket.Session, error) {
	sess, err := websocket.Dial(ctx, url, websocket.SessionConfig{
		HeartbeatInterval: c.policy.HeartbeatInterval,
		MessageTimeout:    c.policy.MessageTimeout,
	}, router, c.logger)
	if err != nil {
		return nil, err
	}

	if c.private {
		frame, err := BuildLogin(*c.creds, time.Now())
		if err != nil {
			sess.Close()
			return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidCredentials, err)
		}
		if err := sess.Send(frame); err != nil {
			sess.Close()
			return nil, err
		}
		c.logger.Debug("login frame sent")
	}
	return sess, nil
}

// replay re-issues every registered subscription on a fresh session. Entries
// are independent: one failed push is logged and does not block the rest.
func (c *Client) replay(sess *websocket.Session) {
	for _, sub := range c.registry.Snapshot() {
		if err := c.sendSubscription(sess, opSubscribe, sub.Channel, sub.Args); err != nil {
			c.logger.Error("replay failed",
				logging.String("key", sub.Key().String()),
				logging.Error(err))
		} else {
			c.logger.Debug("subscription replayed",
				logging.String("key", sub.Key().String()))
		}
	}
}

func (c *Client) sendSubscription(sess *websocket.Session, op string, channel Channel, args Args) error {
	payload, err := json.Marshal(newSubscriptionRequest(op, channel, args))
	if err != nil {
		return err
	}
	return sess.Send(payload)
}

func (c *Client) setState(state interfaces.ConnectionState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Client) setSession(sess *websocket.Session) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
}

// liveSession returns the current session only while Connected.
func (c *Client) liveSession() *websocket.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != interfaces.Connected {
		return nil
	}
	return c.session
}
