package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected = errors.New("not connected")
	ErrAlreadyOpen  = errors.New("connection already open or opening")
	ErrStale        = errors.New("connection stale (no pong)")
)

// Phase is the lifecycle state of the connection.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConnecting Phase = "connecting"
	PhaseOpen       Phase = "open"
	PhaseClosing    Phase = "closing"
	PhaseClosed     Phase = "closed"
)

// Frame wraps raw inbound message data with a receive timestamp.
type Frame struct {
	Data       []byte    // Raw message bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// StateChange is emitted whenever the connection's phase or retry state
// moves. Degraded means the configured consecutive-failure threshold has
// been crossed; the screen renders a persistent disconnected banner but
// the manager keeps retrying.
type StateChange struct {
	Phase    Phase
	Attempt  int // consecutive failed attempts since the last successful open
	Degraded bool
}

// Config configures a connection Manager.
type Config struct {
	URL                string        // WebSocket URL, derived from the REST base
	PingInterval       time.Duration // application ping cadence while open
	LivenessTimeout    time.Duration // no pong for this long forces a reconnect
	WriteTimeout       time.Duration // write deadline for sends
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	ReconnectExpCap    int // cap on the backoff exponent; retries are unbounded
	DisconnectedAfter  int // consecutive failures before Degraded
	BufferSize         int // frame channel buffer size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:       30 * time.Second,
		LivenessTimeout:    60 * time.Second,
		WriteTimeout:       5 * time.Second,
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
		ReconnectExpCap:    6,
		DisconnectedAfter:  5,
		BufferSize:         256,
	}
}

// pingFrame is the application-level liveness probe. The backend answers
// with a {"type":"pong"} envelope on the same connection.
var pingFrame = []byte(`{"type":"ping"}`)
