package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ekaya/cafelive/internal/api"
	"github.com/ekaya/cafelive/internal/model"
)

// Fetcher provides the authoritative snapshot. *api.Client satisfies it.
type Fetcher interface {
	ListOrders(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
}

// Config holds reconciler settings.
type Config struct {
	Debounce time.Duration // coalesce window for delta triggers
	Interval time.Duration // periodic safety refresh (0 disables)
	Timeout  time.Duration // per-fetch timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Debounce: 300 * time.Millisecond,
		Interval: 5 * time.Minute,
		Timeout:  10 * time.Second,
	}
}

// Result is the outcome of one snapshot fetch. On error, Orders is nil
// and the caller keeps its previous collection. SessionInvalid marks a
// rejected credential, which is surfaced as "must re-authenticate"
// rather than a transient fault.
type Result struct {
	Orders         []model.Order
	Err            error
	SessionInvalid bool
	FetchedAt      time.Time
}

// Reconciler keeps the local collection correctable against server truth.
// Triggers are coalesced: any number of deltas arriving within the
// debounce window produce a single fetch.
type Reconciler struct {
	cfg     Config
	fetcher Fetcher
	logger  *slog.Logger

	trigger chan struct{}
	results chan Result

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler creates a Reconciliation Engine.
func NewReconciler(cfg Config, fetcher Fetcher, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		trigger: make(chan struct{}, 1),
		results: make(chan Result, 4),
	}
}

// Start begins the refresh loop with an immediate initial fetch.
func (r *Reconciler) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Info("reconciler started",
		"debounce", r.cfg.Debounce,
		"interval", r.cfg.Interval,
	)
	return nil
}

// Stop shuts down the refresh loop.
func (r *Reconciler) Stop(ctx context.Context) error {
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
		r.logger.Info("reconciler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger requests a refresh. Never blocks; concurrent triggers coalesce.
func (r *Reconciler) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Results returns the channel of fetch outcomes for the session to apply.
func (r *Reconciler) Results() <-chan Result {
	return r.results
}

// run is the main refresh loop.
func (r *Reconciler) run() {
	defer r.wg.Done()

	// Refresh immediately on mount.
	r.fetch()

	var safety <-chan time.Time
	var safetyTimer *time.Timer
	if r.cfg.Interval > 0 {
		safetyTimer = time.NewTimer(r.cfg.Interval)
		defer safetyTimer.Stop()
		safety = safetyTimer.C
	}

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-r.trigger:
			r.debounce()
			r.fetch()

		case <-safety:
			r.fetch()
		}

		if safetyTimer != nil {
			if !safetyTimer.Stop() {
				select {
				case <-safetyTimer.C:
				default:
				}
			}
			safetyTimer.Reset(r.cfg.Interval)
		}
	}
}

// debounce waits out the coalesce window, absorbing further triggers so a
// burst of notifications yields one fetch.
func (r *Reconciler) debounce() {
	if r.cfg.Debounce <= 0 {
		return
	}

	timer := time.NewTimer(r.cfg.Debounce)
	defer timer.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.trigger:
			// absorbed into this cycle
		case <-timer.C:
			return
		}
	}
}

// fetch performs one snapshot fetch and publishes the result.
func (r *Reconciler) fetch() {
	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	orders, err := r.fetcher.ListOrders(ctx, "")

	result := Result{
		Orders:    orders,
		Err:       err,
		FetchedAt: start,
	}

	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			result.SessionInvalid = true
		}
		r.logger.Warn("snapshot fetch failed",
			"error", err,
			"session_invalid", result.SessionInvalid,
		)
	} else {
		r.logger.Debug("snapshot fetched",
			"orders", len(orders),
			"duration", time.Since(start),
		)
	}

	select {
	case r.results <- result:
	case <-r.ctx.Done():
	}
}
