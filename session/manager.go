// Package session owns the single live connection to the MCP endpoint: it
// dials, performs the registration handshake, reads invocation messages,
// dispatches them to the webhook forwarder and drives reconnection with
// exponential backoff when the connection drops.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/viant/jsonrpc"

	"github.com/viant/wsbridge/codec"
	"github.com/viant/wsbridge/correlator"
	"github.com/viant/wsbridge/internal/collection"
	"github.com/viant/wsbridge/webhook"
)

// errShutdown marks a deliberate terminal stop requested by the peer.
var errShutdown = errors.New("shutdown requested")

// Manager maintains at most one live session at a time; the connection is
// replaced wholesale on reconnect, never partially reused.
type Manager struct {
	config     *Config
	forwarder  *webhook.Forwarder
	correlator *correlator.Correlator
	logger     *Logger
	dialer     *websocket.Dialer
	backoff    *Backoff

	// active maps registrations to the cancel funcs of their in-flight
	// forwarder calls so teardown and per-call cancellation can abort them.
	active *collection.SyncMap[*correlator.Pending, context.CancelFunc]

	state atomic.Int32

	mux          sync.Mutex
	conn         *websocket.Conn
	sessionId    string
	lastActivity time.Time

	writeMux sync.Mutex

	stopRequested atomic.Bool
}

// Option customizes a manager.
type Option func(m *Manager)

// WithDialer overrides the WebSocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(m *Manager) {
		m.dialer = dialer
	}
}

// New creates a session manager for the configured endpoint.
func New(config *Config, forwarder *webhook.Forwarder, options ...Option) *Manager {
	config.Init()
	ret := &Manager{
		config:     config,
		forwarder:  forwarder,
		correlator: correlator.New(),
		dialer:     websocket.DefaultDialer,
		backoff:    NewBackoff(config.BackoffBase, config.BackoffMax),
		active:     collection.NewSyncMap[*correlator.Pending, context.CancelFunc](),
	}
	ret.logger = NewLogger("session", config.LogLevel, ret)
	for _, option := range options {
		option(ret)
	}
	return ret
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(state State) {
	m.state.Store(int32(state))
}

// SessionId identifies the current connection in logs; it changes on every
// reconnect.
func (m *Manager) SessionId() string {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.sessionId
}

// LastActivity reports when the session last read a frame.
func (m *Manager) LastActivity() time.Time {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.lastActivity
}

// Correlator exposes the pending-call table.
func (m *Manager) Correlator() *correlator.Correlator {
	return m.correlator
}

// Run keeps the bridge connected until the context is cancelled or the peer
// requests shutdown. Connection errors are non-fatal: the loop retries with
// exponential backoff and no retry ceiling.
func (m *Manager) Run(ctx context.Context) error {
	defer m.setState(StateStopped)
	for {
		if ctx.Err() != nil {
			return nil
		}
		m.setState(StateConnecting)
		m.logger.Infof(ctx, "connecting to %v", m.config.EndpointURL)
		conn, err := m.dial(ctx)
		if err != nil {
			m.setState(StateDisconnected)
			if ctx.Err() != nil {
				return nil
			}
			delay := m.backoff.Next()
			m.logger.Warningf(ctx, "connect failed: %v, retrying in %v", err, delay)
			if err := sleep(ctx, delay); err != nil {
				return nil
			}
			continue
		}
		err = m.serve(ctx, conn)
		m.drain(ctx, conn)
		if errors.Is(err, errShutdown) {
			m.logger.Infof(ctx, "session closed on shutdown request")
			return nil
		}
		m.setState(StateDisconnected)
		if ctx.Err() != nil {
			return nil
		}
		delay := m.backoff.Next()
		m.logger.Warningf(ctx, "session ended: %v, reconnecting in %v", err, delay)
		if err := sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, response, err := m.dialer.DialContext(ctx, m.config.EndpointURL, http.Header{})
	if response != nil && response.Body != nil {
		_ = response.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// serve runs the read loop for one connection; it returns when the transport
// fails, the peer requests shutdown, or the context is cancelled.
func (m *Manager) serve(parent context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	m.mux.Lock()
	m.conn = conn
	m.sessionId = uuid.New().String()
	m.lastActivity = time.Now()
	sessionId := m.sessionId
	m.mux.Unlock()

	m.setState(StateRegistering)
	m.logger.Infof(ctx, "session %v established", sessionId)

	deadline := m.config.PingInterval + m.config.PingTimeout
	_ = conn.SetReadDeadline(time.Now().Add(deadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(deadline))
	})
	go m.keepalive(ctx, conn)
	// Unblock the read loop when the run context is cancelled.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if m.stopRequested.Load() {
				return errShutdown
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.logger.Infof(ctx, "connection closed by peer: %v", err)
			}
			return err
		}
		m.mux.Lock()
		m.lastActivity = time.Now()
		m.mux.Unlock()
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		if done := m.handle(ctx, data); done != nil {
			return done
		}
	}
}

// keepalive pings the peer so half-open connections surface as read timeouts.
func (m *Manager) keepalive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(m.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.writeMux.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(m.config.WriteTimeout))
			m.writeMux.Unlock()
			if err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// drain tears one session down: every pending call is cancelled so its
// outcome, should it still arrive, is discarded and never written.
func (m *Manager) drain(ctx context.Context, conn *websocket.Conn) {
	m.setState(StateDraining)
	cancelled := m.correlator.CancelAll()
	for _, cancel := range m.active.Drain() {
		cancel()
	}
	if cancelled > 0 {
		m.logger.Warningf(ctx, "cancelled %v pending call(s) on teardown", cancelled)
	}
	_ = conn.Close()
	m.mux.Lock()
	m.conn = nil
	m.mux.Unlock()
}

// toActive completes registration; the backoff resets only here so flapping
// connections keep growing their delay.
func (m *Manager) toActive(ctx context.Context) {
	if m.State() == StateActive {
		return
	}
	m.setState(StateActive)
	m.backoff.Reset()
	m.logger.Infof(ctx, "tool %q registered, session active", m.config.Tool.Name)
}

// requestStop acknowledges a peer-driven shutdown: the read loop terminates
// with errShutdown once the connection closes.
func (m *Manager) requestStop() {
	m.stopRequested.Store(true)
	m.mux.Lock()
	conn := m.conn
	m.mux.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// write serializes all outbound frames; concurrent writers to one connection
// would interleave frames otherwise.
func (m *Manager) write(data []byte) error {
	m.mux.Lock()
	conn := m.conn
	m.mux.Unlock()
	if conn == nil {
		return errors.New("session is not connected")
	}
	m.writeMux.Lock()
	defer m.writeMux.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(m.config.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Notify implements Notifier for the session logger.
func (m *Manager) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	data, err := codec.EncodeNotification(notification)
	if err != nil {
		return err
	}
	return m.write(data)
}
