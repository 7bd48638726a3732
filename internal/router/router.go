package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Router classifies inbound frames and dispatches them.
type Router interface {
	// Start begins routing frames from the connection.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the router.
	Stop(ctx context.Context) error

	// Stats returns current router statistics.
	Stats() Stats
}

// router is the internal implementation.
type router struct {
	deps   Deps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	received int64
	routed   int64
	parseErr int64
	unknown  int64
	pongs    int64
}

// New creates an Event Router.
func New(deps Deps, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &router{
		deps:   deps,
		logger: logger,
	}
}

// Start begins routing frames.
func (r *router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("event router started")
	return nil
}

// Stop gracefully shuts down the router.
func (r *router) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("event router stopped")
	case <-ctx.Done():
		r.logger.Warn("event router stop timed out")
	}

	return nil
}

// Stats returns current statistics.
func (r *router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		FramesReceived: r.received,
		Dispatched:     r.routed,
		ParseErrors:    r.parseErr,
		UnknownKinds:   r.unknown,
		Pongs:          r.pongs,
	}
}

// routeLoop is the single routing goroutine. Frames are dispatched in
// arrival order; no two dispatches run concurrently.
func (r *router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case frame, ok := <-r.deps.Frames:
			if !ok {
				r.logger.Info("frame channel closed")
				return
			}
			r.route(frame.Data)
		}
	}
}

// route parses and dispatches a single frame. Malformed frames are
// dropped here; they never propagate.
func (r *router) route(data []byte) {
	r.count(&r.received)

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Warn("dropping malformed frame", "error", err)
		r.count(&r.parseErr)
		return
	}

	switch env.Type {
	case "pong", "ping":
		// Either direction of the liveness pair proves the link is alive.
		r.count(&r.pongs)
		if r.deps.OnHeartbeatAck != nil {
			r.deps.OnHeartbeatAck()
		}

	case "siparis", "order":
		r.stateChanged(KindOrder)
		if r.deps.OnNewOrder != nil {
			r.deps.OnNewOrder(parseOrderEvent(env.Data))
		}

	case "durum", "status":
		r.stateChanged(KindStatus)

	case "table_status":
		r.stateChanged(KindTableStatus)

	default:
		r.logger.Debug("ignoring unrecognized message type", "type", env.Type)
		r.count(&r.unknown)
	}
}

// stateChanged forwards a "wake up and refetch" trigger.
func (r *router) stateChanged(kind Kind) {
	r.count(&r.routed)
	if r.deps.OnStateChanged != nil {
		r.deps.OnStateChanged(kind)
	}
}

// parseOrderEvent extracts identity fields from a new-order payload.
// Payload problems are not fatal: the refresh trigger already fired and
// the snapshot carries the authoritative order.
func parseOrderEvent(data json.RawMessage) OrderEvent {
	var wire orderEventWire
	if len(data) > 0 {
		json.Unmarshal(data, &wire)
	}

	table := wire.TableID
	if table == "" {
		table = wire.Masa
	}

	return OrderEvent{ID: wire.ID, TableID: table}
}

func (r *router) count(field *int64) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}
