// Package notify defines the alert-sink contract for new-order events.
//
// The actual audio/visual device is an external collaborator; screens
// plug in whatever implementation their environment offers.
package notify

import "log/slog"

// Sink receives new-order alerts. One sink is shared per screen and only
// the Event Router's new-order effect invokes it. Implementations must be
// safe to invoke repeatedly in quick succession: each invocation restarts
// the alert rather than queuing another. Failures are the sink's own to
// log; they must never affect order state.
type Sink interface {
	NewOrder(orderID int64, tableID string)
}

// Func adapts a function to the Sink interface.
type Func func(orderID int64, tableID string)

func (f Func) NewOrder(orderID int64, tableID string) { f(orderID, tableID) }

// LogSink logs each alert. The default for headless screens.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) NewOrder(orderID int64, tableID string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("new order alert", "order_id", orderID, "table", tableID)
}

// Nop discards alerts.
type Nop struct{}

func (Nop) NewOrder(int64, string) {}
