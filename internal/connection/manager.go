package connection

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Manager owns one duplex connection to the backend and keeps it alive.
// A screen creates exactly one Manager; Open refuses to run while a
// previous open is still in flight.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	// Output channels
	frames chan Frame
	states chan StateChange

	mu      sync.Mutex
	phase   Phase
	attempt int
	lastAck time.Time
	conn    *websocket.Conn
	done    chan struct{}

	// Write serialization
	writeMu sync.Mutex

	wg sync.WaitGroup
}

// serve outcomes
type serveOutcome int

const (
	outcomeStopped      serveOutcome = iota // deliberate Close or context cancel
	outcomeServerClosed                     // server sent a normal closure
	outcomeAbnormal                         // read error, abnormal close, or stale liveness
)

// NewManager creates a connection Manager. It does not dial until Open.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:    cfg,
		logger: logger,
		frames: make(chan Frame, cfg.BufferSize),
		states: make(chan StateChange, 16),
		phase:  PhaseIdle,
	}
}

// Frames returns the channel of raw inbound frames for the Event Router.
func (m *Manager) Frames() <-chan Frame {
	return m.frames
}

// States returns the channel of connection state changes for the view.
func (m *Manager) States() <-chan StateChange {
	return m.states
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// HeartbeatAck records a liveness acknowledgment. Called by the Event
// Router when a pong envelope arrives.
func (m *Manager) HeartbeatAck() {
	m.mu.Lock()
	m.lastAck = time.Now()
	m.mu.Unlock()
}

// Open starts the connection loop. Dial failures do not surface here;
// they feed the retry path and the States channel. Returns ErrAlreadyOpen
// if a connection is already connecting or open.
func (m *Manager) Open(ctx context.Context) error {
	m.mu.Lock()
	switch m.phase {
	case PhaseConnecting, PhaseOpen, PhaseClosing:
		m.mu.Unlock()
		return ErrAlreadyOpen
	}
	m.phase = PhaseConnecting
	m.attempt = 0
	m.done = make(chan struct{})
	m.mu.Unlock()
	m.emit()

	m.wg.Add(1)
	go m.run(ctx)

	return nil
}

// Close transitions closing -> closed with a normal-closure signal and
// suppresses any pending reconnection. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	switch m.phase {
	case PhaseIdle, PhaseClosed, PhaseClosing:
		m.mu.Unlock()
		return nil
	}
	m.phase = PhaseClosing
	done := m.done
	m.mu.Unlock()
	m.emit()

	close(done)
	m.wg.Wait()

	m.mu.Lock()
	m.phase = PhaseClosed
	m.mu.Unlock()
	m.emit()

	return nil
}

// Send writes raw bytes to the connection.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	conn := m.conn
	open := m.phase == PhaseOpen
	m.mu.Unlock()

	if !open || conn == nil {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// run is the connect/serve/reconnect loop. It exits only on deliberate
// Close, context cancellation, or a normal closure from the server.
func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	for {
		conn, err := m.dial(ctx)
		if err != nil {
			if !m.backoffOrStop(ctx, done) {
				return
			}
			continue
		}

		m.setOpen(conn)

		switch m.serve(ctx, conn, done) {
		case outcomeStopped:
			return

		case outcomeServerClosed:
			m.logger.Info("stream closed by server")
			m.mu.Lock()
			if m.phase == PhaseOpen {
				m.phase = PhaseClosed
			}
			m.conn = nil
			m.mu.Unlock()
			m.emit()
			return

		case outcomeAbnormal:
			m.mu.Lock()
			if m.phase == PhaseOpen {
				m.phase = PhaseConnecting
			}
			stopping := m.phase != PhaseConnecting
			m.conn = nil
			m.mu.Unlock()
			if stopping {
				return
			}
			m.emit()
			if !m.backoffOrStop(ctx, done) {
				return
			}
		}
	}
}

// dial attempts a single WebSocket handshake.
func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, m.cfg.URL, nil)
	if err != nil {
		m.logger.Warn("stream dial failed", "url", m.cfg.URL, "error", err)
	}
	return conn, err
}

// setOpen records a successful open and resets the retry counter.
func (m *Manager) setOpen(conn *websocket.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.phase = PhaseOpen
	m.attempt = 0
	m.lastAck = time.Now()
	m.mu.Unlock()
	m.emit()

	m.logger.Info("stream connected", "url", m.cfg.URL)
}

// serve pumps frames and heartbeats until the connection ends.
func (m *Manager) serve(ctx context.Context, conn *websocket.Conn, done chan struct{}) serveOutcome {
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			receivedAt := time.Now()
			if err != nil {
				readErr <- err
				return
			}

			frame := Frame{Data: data, ReceivedAt: receivedAt}
			select {
			case m.frames <- frame:
			default:
				m.logger.Warn("frame buffer full, dropping frame")
			}
		}
	}()

	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeNormal(conn)
			return outcomeStopped

		case <-done:
			m.closeNormal(conn)
			return outcomeStopped

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				conn.Close()
				return outcomeServerClosed
			}
			m.logger.Warn("stream read error", "error", err)
			conn.Close()
			return outcomeAbnormal

		case <-ticker.C:
			if err := m.Send(pingFrame); err != nil {
				m.logger.Warn("ping send failed", "error", err)
				conn.Close()
				return outcomeAbnormal
			}

			m.mu.Lock()
			lastAck := m.lastAck
			m.mu.Unlock()

			if time.Since(lastAck) > m.cfg.LivenessTimeout {
				m.logger.Warn("no pong within liveness timeout, forcing reconnect",
					"last_ack", lastAck,
					"timeout", m.cfg.LivenessTimeout,
				)
				conn.Close()
				return outcomeAbnormal
			}
		}
	}
}

// closeNormal sends a normal-closure message and closes the transport.
func (m *Manager) closeNormal(conn *websocket.Conn) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	conn.Close()

	m.mu.Lock()
	m.conn = nil
	m.mu.Unlock()
}

// backoffOrStop waits out the reconnect delay for the next attempt.
// Returns false if the manager should stop retrying.
func (m *Manager) backoffOrStop(ctx context.Context, done chan struct{}) bool {
	m.mu.Lock()
	m.attempt++
	attempt := m.attempt
	m.mu.Unlock()
	m.emit()

	delay := m.backoffDelay(attempt - 1)

	m.logger.Info("scheduling reconnect",
		"attempt", attempt,
		"delay", delay,
	)

	select {
	case <-ctx.Done():
		return false
	case <-done:
		return false
	case <-time.After(delay):
		return true
	}
}

// backoffDelay is baseBackoff plus jitter, clamped to the configured max.
func (m *Manager) backoffDelay(n int) time.Duration {
	delay := baseBackoff(n, m.cfg.ReconnectBaseDelay, m.cfg.ReconnectMaxDelay, m.cfg.ReconnectExpCap)
	if m.cfg.ReconnectBaseDelay > 0 {
		delay += time.Duration(rand.Int64N(int64(m.cfg.ReconnectBaseDelay)))
	}
	if delay > m.cfg.ReconnectMaxDelay {
		delay = m.cfg.ReconnectMaxDelay
	}
	return delay
}

// baseBackoff computes base * 2^min(n, expCap), clamped to max.
func baseBackoff(n int, base, max time.Duration, expCap int) time.Duration {
	if n > expCap {
		n = expCap
	}
	delay := base
	for i := 0; i < n; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		delay = max
	}
	return delay
}

// emit publishes the current state, dropping if nobody is listening.
func (m *Manager) emit() {
	m.mu.Lock()
	change := StateChange{
		Phase:    m.phase,
		Attempt:  m.attempt,
		Degraded: m.attempt >= m.cfg.DisconnectedAfter,
	}
	m.mu.Unlock()

	select {
	case m.states <- change:
	default:
	}
}
