package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// transitions is the legal status graph. Directed, acyclic per order:
//
//	pending -> preparing -> ready -> paid
//	pending -> cancelled
//	preparing -> cancelled
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusPaid},
}

// CanTransition reports whether an order may move from one status directly
// to the next. ready never reaches cancelled; terminal states reach nothing.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LineItem is one product line on an order. Immutable once the order exists.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"` // kuruş, captured at order time
	Note      string `json:"note,omitempty"`
}

// Order is one customer order as reported by the backend.
type Order struct {
	ID          int64       `json:"id"`
	TableID     string      `json:"table_id"`
	Items       []LineItem  `json:"items"`
	RequestNote string      `json:"request_note,omitempty"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Total returns the order total in kuruş.
func (o *Order) Total() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.UnitPrice * int64(it.Quantity)
	}
	return sum
}

// TableState is the occupancy state of one table.
type TableState struct {
	ID       string `json:"id"`
	Occupied bool   `json:"occupied"`
	OpenBill int64  `json:"open_bill"` // kuruş
}

// Product is a catalog entry.
type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"` // kuruş
}
