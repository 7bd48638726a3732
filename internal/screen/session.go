package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya/cafelive/internal/api"
	"github.com/ekaya/cafelive/internal/config"
	"github.com/ekaya/cafelive/internal/connection"
	"github.com/ekaya/cafelive/internal/greeting"
	"github.com/ekaya/cafelive/internal/model"
	"github.com/ekaya/cafelive/internal/notify"
	"github.com/ekaya/cafelive/internal/router"
	"github.com/ekaya/cafelive/internal/store"
)

// CancelOutcome is the result of a cancel action.
type CancelOutcome string

const (
	// CancelAccepted: the backend cancelled the order.
	CancelAccepted CancelOutcome = "accepted"

	// CancelRefusedLocally: the window had already closed at dispatch
	// time; no network call was made.
	CancelRefusedLocally CancelOutcome = "refused_locally"

	// CancelRejectedByServer: the client-side check passed but the
	// backend's authoritative check did not. An expected race outcome,
	// not an error; local state re-syncs from the response.
	CancelRejectedByServer CancelOutcome = "rejected_by_server"
)

// Options configures a Session.
type Options struct {
	Config  *config.ScreenConfig
	Kind    Kind
	TableID string // required for KindTable
	Sink    notify.Sink
	Greeter *greeting.Store // optional; table screen only
	Logger  *slog.Logger
}

// Session drives one screen. Create with NewSession, run with Start,
// observe through Views, act through the order methods.
type Session struct {
	opts     Options
	logger   *slog.Logger
	clientID string

	apiClient  *api.Client
	conn       *connection.Manager
	router     router.Router
	rec        *store.Reconciler
	collection *store.Collection
	sink       notify.Sink

	actions chan func()
	views   chan ViewState

	// Loop-owned state. Touched only from the event loop goroutine.
	connStatus     ConnStatus
	sessionInvalid bool
	lastErr        string
	showGreeting   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession wires a screen's components. It does not connect until Start.
func NewSession(opts Options) (*Session, error) {
	if !opts.Kind.Valid() {
		return nil, fmt.Errorf("unknown screen kind %q", opts.Kind)
	}
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sink == nil {
		opts.Sink = notify.LogSink{Logger: opts.Logger}
	}

	logger := opts.Logger.With("screen", opts.Kind)
	clientID := uuid.NewString()

	streamURL, err := StreamURL(opts.Config.API.BaseURL, opts.Kind, opts.TableID, opts.Config.API.Token, clientID)
	if err != nil {
		return nil, fmt.Errorf("derive stream url: %w", err)
	}

	apiClient := api.NewClient(
		opts.Config.API.BaseURL,
		opts.Config.API.Token,
		api.WithLogger(logger),
		api.WithTimeout(opts.Config.API.Timeout),
		api.WithRetries(opts.Config.API.MaxRetries, time.Second),
	)

	conn := connection.NewManager(connection.Config{
		URL:                streamURL,
		PingInterval:       opts.Config.Stream.PingInterval,
		LivenessTimeout:    opts.Config.Stream.LivenessTimeout,
		WriteTimeout:       5 * time.Second,
		ReconnectBaseDelay: opts.Config.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:  opts.Config.Stream.ReconnectMaxDelay,
		ReconnectExpCap:    opts.Config.Stream.ReconnectExpCap,
		DisconnectedAfter:  opts.Config.Stream.DisconnectedAfter,
		BufferSize:         opts.Config.Stream.BufferSize,
	}, logger)

	rec := store.NewReconciler(store.Config{
		Debounce: opts.Config.Refresh.Debounce,
		Interval: opts.Config.Refresh.Interval,
		Timeout:  opts.Config.Refresh.Timeout,
	}, apiClient, logger)

	s := &Session{
		opts:       opts,
		logger:     logger,
		clientID:   clientID,
		apiClient:  apiClient,
		conn:       conn,
		rec:        rec,
		collection: store.NewCollection(logger),
		sink:       opts.Sink,
		actions:    make(chan func(), 16),
		views:      make(chan ViewState, 1),
		connStatus: StatusConnecting,
	}

	s.router = router.New(router.Deps{
		Frames:         conn.Frames(),
		OnStateChanged: func(router.Kind) { rec.Trigger() },
		OnNewOrder: func(evt router.OrderEvent) {
			s.sink.NewOrder(evt.ID, evt.TableID)
		},
		OnHeartbeatAck: conn.HeartbeatAck,
	}, logger)

	return s, nil
}

// ClientID returns the per-session instance id carried on the stream URL.
func (s *Session) ClientID() string {
	return s.clientID
}

// Views returns the latest rendered state. The channel holds one element;
// a slow consumer sees the most recent view, not a backlog.
func (s *Session) Views() <-chan ViewState {
	return s.views
}

// Start opens the connection and begins the event loop.
func (s *Session) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.conn.Open(s.ctx); err != nil {
		return fmt.Errorf("open connection: %w", err)
	}
	if err := s.router.Start(s.ctx); err != nil {
		return fmt.Errorf("start router: %w", err)
	}
	if err := s.rec.Start(s.ctx); err != nil {
		return fmt.Errorf("start reconciler: %w", err)
	}

	s.checkGreeting()

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("session started", "client_id", s.clientID)
	return nil
}

// Stop tears the session down: reconciler, router, then the connection
// with a normal closure.
func (s *Session) Stop(ctx context.Context) error {
	s.rec.Stop(ctx)
	s.router.Stop(ctx)
	s.conn.Close()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.logger.Info("session stopped")
	return nil
}

// Refresh requests a manual snapshot refresh.
func (s *Session) Refresh() {
	s.rec.Trigger()
}

// CancelOrder attempts to cancel an order. Eligibility is re-checked
// synchronously at dispatch; a rendered countdown is never trusted. A
// server-side rejection is an expected outcome and re-syncs local state
// from the response.
func (s *Session) CancelOrder(ctx context.Context, id int64) (CancelOutcome, error) {
	var outcome CancelOutcome
	var opErr error

	err := s.do(ctx, func() {
		o, ok := s.collection.Get(id)
		if !ok {
			opErr = fmt.Errorf("unknown order %d", id)
			return
		}

		if !model.CancelEligible(&o, time.Now()) {
			outcome = CancelRefusedLocally
			return
		}

		resp, err := s.apiClient.CancelOrder(ctx, id)
		if err != nil {
			opErr = err
			s.noteError(err)
			return
		}

		s.collection.Upsert(resp.Order.ToModel())
		s.rec.Trigger()

		if resp.Cancelled {
			outcome = CancelAccepted
		} else {
			s.logger.Info("cancel rejected by server",
				"order_id", id,
				"reason", resp.Reason,
			)
			outcome = CancelRejectedByServer
		}
	})
	if err != nil {
		return "", err
	}
	return outcome, opErr
}

// AdvanceOrder moves an order to the given status (kitchen and cashier
// screens). The transition is checked locally before the request; the
// backend's response is authoritative either way.
func (s *Session) AdvanceOrder(ctx context.Context, id int64, status model.OrderStatus) error {
	var opErr error

	err := s.do(ctx, func() {
		if o, ok := s.collection.Get(id); ok && !model.CanTransition(o.Status, status) {
			opErr = fmt.Errorf("order %d: illegal transition %s -> %s", id, o.Status, status)
			return
		}

		order, err := s.apiClient.AdvanceStatus(ctx, id, status)
		if err != nil {
			opErr = err
			s.noteError(err)
			return
		}

		s.collection.Upsert(*order)
		s.rec.Trigger()
	})
	if err != nil {
		return err
	}
	return opErr
}

// MarkPaid marks an order paid (cashier screen).
func (s *Session) MarkPaid(ctx context.Context, id int64) error {
	var opErr error

	err := s.do(ctx, func() {
		if o, ok := s.collection.Get(id); ok && !model.CanTransition(o.Status, model.StatusPaid) {
			opErr = fmt.Errorf("order %d: illegal transition %s -> paid", id, o.Status)
			return
		}

		order, err := s.apiClient.MarkPaid(ctx, id)
		if err != nil {
			opErr = err
			s.noteError(err)
			return
		}

		s.collection.Upsert(*order)
		s.rec.Trigger()
	})
	if err != nil {
		return err
	}
	return opErr
}

// do schedules fn onto the event loop and waits for it to run.
func (s *Session) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case s.actions <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// loop is the session's single event loop. Every task that touches the
// collection or the banner state runs here, in sequence.
func (s *Session) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	s.publish()

	for {
		select {
		case <-s.ctx.Done():
			return

		case fn := <-s.actions:
			fn()
			s.publish()

		case res := <-s.rec.Results():
			s.applyResult(res)
			s.publish()

		case change := <-s.conn.States():
			s.applyConnState(change)
			s.publish()

		case <-ticker.C:
			// Countdown recomputation: remaining time derives from the
			// wall clock on every publish, so this tick only re-renders.
			s.publish()
		}
	}
}

// applyResult installs a snapshot or records a fetch failure. A failed
// fetch leaves the previous collection in place.
func (s *Session) applyResult(res store.Result) {
	if res.Err != nil {
		s.lastErr = res.Err.Error()
		if res.SessionInvalid {
			s.sessionInvalid = true
		}
		return
	}

	s.collection.ReplaceAll(res.Orders)
	s.lastErr = ""
	s.sessionInvalid = false
}

// applyConnState projects connection phase onto the banner status.
func (s *Session) applyConnState(change connection.StateChange) {
	switch change.Phase {
	case connection.PhaseOpen:
		s.connStatus = StatusLive
	case connection.PhaseConnecting:
		switch {
		case change.Degraded:
			s.connStatus = StatusDisconnected
		case change.Attempt > 0:
			s.connStatus = StatusReconnecting
		default:
			s.connStatus = StatusConnecting
		}
	case connection.PhaseClosing, connection.PhaseClosed:
		s.connStatus = StatusClosed
	}
}

// noteError records an action failure for the banner.
func (s *Session) noteError(err error) {
	s.lastErr = err.Error()

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuthError() {
		s.sessionInvalid = true
	}
}

// publish renders the current state. Latest view wins; a stale unread
// view is discarded rather than queued.
func (s *Session) publish() {
	now := time.Now()
	view := ViewState{
		Conn:           s.connStatus,
		SessionInvalid: s.sessionInvalid,
		LastError:      s.lastErr,
		ShowGreeting:   s.showGreeting,
		Orders:         projectRows(s.collection.All(), now),
		UpdatedAt:      now,
	}

	for {
		select {
		case s.views <- view:
			return
		default:
			select {
			case <-s.views:
			default:
			}
		}
	}
}

// checkGreeting flips the one-shot greeting flag for the table screen.
func (s *Session) checkGreeting() {
	if s.opts.Kind != KindTable || s.opts.Greeter == nil {
		return
	}

	now := time.Now()
	greeted, err := s.opts.Greeter.Greeted(s.opts.TableID, now)
	if err != nil {
		s.logger.Warn("greeting store read failed", "error", err)
		return
	}
	if greeted {
		return
	}

	s.showGreeting = true
	if err := s.opts.Greeter.MarkGreeted(s.opts.TableID, now); err != nil {
		s.logger.Warn("greeting store write failed", "error", err)
	}
}
