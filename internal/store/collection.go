package store

import (
	"log/slog"
	"sort"

	"github.com/ekaya/cafelive/internal/model"
)

// Collection is the local order set, keyed by id. It is not safe for
// concurrent use: the owning session serializes every access on its
// event loop, so no locking is needed here.
type Collection struct {
	orders map[int64]model.Order
	logger *slog.Logger
}

// NewCollection creates an empty collection.
func NewCollection(logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{
		orders: make(map[int64]model.Order),
		logger: logger,
	}
}

// Get returns the order with the given id.
func (c *Collection) Get(id int64) (model.Order, bool) {
	o, ok := c.orders[id]
	return o, ok
}

// Len returns the number of orders held.
func (c *Collection) Len() int {
	return len(c.orders)
}

// All returns the orders sorted by creation time, then id.
func (c *Collection) All() []model.Order {
	out := make([]model.Order, 0, len(c.orders))
	for _, o := range c.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ReplaceAll installs a snapshot wholesale. The snapshot is authoritative:
// existing records are replaced by id, never field-merged, and records
// absent from the snapshot are dropped. A snapshot that repeats an id
// keeps the last occurrence.
func (c *Collection) ReplaceAll(orders []model.Order) {
	next := make(map[int64]model.Order, len(orders))
	for _, o := range orders {
		if _, dup := next[o.ID]; dup {
			c.logger.Warn("snapshot repeats order id, keeping last", "id", o.ID)
		}
		next[o.ID] = o
	}
	c.orders = next
}

// Upsert replaces one order record outright, for re-syncing from a
// mutation response between refreshes.
func (c *Collection) Upsert(o model.Order) {
	c.orders[o.ID] = o
}

// ApplyStatus moves one order along the lifecycle graph. An update naming
// a state unreachable from the current one is rejected and logged, which
// protects against out-of-order delivery re-animating a terminal order.
// Returns true if the status was applied.
func (c *Collection) ApplyStatus(id int64, status model.OrderStatus) bool {
	o, ok := c.orders[id]
	if !ok {
		c.logger.Warn("status update for unknown order", "id", id, "status", status)
		return false
	}
	if o.Status == status {
		return false
	}
	if !model.CanTransition(o.Status, status) {
		c.logger.Warn("rejecting unreachable status update",
			"id", id,
			"current", o.Status,
			"proposed", status,
		)
		return false
	}

	o.Status = status
	c.orders[id] = o
	return true
}
