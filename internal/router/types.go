package router

import (
	"encoding/json"

	"github.com/ekaya/cafelive/internal/connection"
)

// Kind is a normalized inbound message classification. The backend emits
// both Turkish and English type strings for the same events; the router
// folds them into one kind before dispatch.
type Kind string

const (
	KindOrder       Kind = "order"        // a new order was created
	KindStatus      Kind = "status"       // an order lifecycle change
	KindTableStatus Kind = "table_status" // table occupancy change
)

// envelope is the wire shape of every inbound frame.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// OrderEvent is the parsed payload of a new-order notification. Only
// identity fields are extracted; full detail always comes from the next
// snapshot refresh.
type OrderEvent struct {
	ID      int64
	TableID string
}

// orderEventWire tolerates both field spellings used by the backend.
type orderEventWire struct {
	ID      int64  `json:"id"`
	Masa    string `json:"masa"`
	TableID string `json:"table_id"`
}

// Deps are the dispatch targets. All callbacks run on the router's single
// goroutine, so implementations need no locking of their own.
type Deps struct {
	Frames <-chan connection.Frame

	// OnStateChanged fires for every state-bearing kind.
	OnStateChanged func(kind Kind)

	// OnNewOrder fires for new-order kinds, after OnStateChanged.
	OnNewOrder func(evt OrderEvent)

	// OnHeartbeatAck fires for liveness acknowledgments.
	OnHeartbeatAck func()
}

// Stats contains runtime counters.
type Stats struct {
	FramesReceived int64
	Dispatched     int64
	ParseErrors    int64
	UnknownKinds   int64
	Pongs          int64
}
