package screen

import (
	"time"

	"github.com/ekaya/cafelive/internal/model"
)

// ConnStatus is the connection banner state.
type ConnStatus string

const (
	StatusConnecting   ConnStatus = "connecting"
	StatusLive         ConnStatus = "live"
	StatusReconnecting ConnStatus = "reconnecting" // transient indicator
	StatusDisconnected ConnStatus = "disconnected" // persistent, after repeated failures
	StatusClosed       ConnStatus = "closed"
)

// OrderRow is one rendered order line. Rows are a pure projection of the
// collection plus the cancellation window at a given instant.
type OrderRow struct {
	ID              int64
	TableID         string
	Status          model.OrderStatus
	Total           int64 // kuruş
	CreatedAt       time.Time
	CancelEligible  bool
	CancelRemaining time.Duration
}

// ViewState is everything a screen renders. Errors surface here as
// banner text, never as process exits.
type ViewState struct {
	Conn           ConnStatus
	SessionInvalid bool // credential rejected; must re-authenticate
	LastError      string
	ShowGreeting   bool // table screen only, once per TTL
	Orders         []OrderRow
	UpdatedAt      time.Time
}

// projectRows renders the collection at the given instant.
func projectRows(orders []model.Order, now time.Time) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		rows = append(rows, OrderRow{
			ID:              o.ID,
			TableID:         o.TableID,
			Status:          o.Status,
			Total:           o.Total(),
			CreatedAt:       o.CreatedAt,
			CancelEligible:  model.CancelEligible(o, now),
			CancelRemaining: model.CancelRemaining(o, now),
		})
	}
	return rows
}
