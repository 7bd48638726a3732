package api

import (
	"time"

	"github.com/ekaya/cafelive/internal/model"
)

// APIOrder is the wire shape of an order. The backend uses "masa" for
// the table field on older deployments; both spellings are accepted.
type APIOrder struct {
	ID          int64         `json:"id"`
	TableID     string        `json:"table_id"`
	Masa        string        `json:"masa"`
	Items       []APILineItem `json:"items"`
	RequestNote string        `json:"request_note"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// APILineItem is the wire shape of one order line.
type APILineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Note      string `json:"note,omitempty"`
}

// ToModel converts a wire order to the domain type.
func (o APIOrder) ToModel() model.Order {
	table := o.TableID
	if table == "" {
		table = o.Masa
	}

	items := make([]model.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, model.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Note:      it.Note,
		})
	}

	return model.Order{
		ID:          o.ID,
		TableID:     table,
		Items:       items,
		RequestNote: o.RequestNote,
		Status:      model.OrderStatus(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}

// OrdersResponse wraps the order list endpoint.
type OrdersResponse struct {
	Orders []APIOrder `json:"orders"`
}

// CancelResponse is the cancel endpoint's result. Cancelled is false when
// the window had already closed server-side; Order then carries the
// authoritative current state for re-sync.
type CancelResponse struct {
	Cancelled bool     `json:"cancelled"`
	Reason    string   `json:"reason,omitempty"`
	Order     APIOrder `json:"order"`
}

// TableBillResponse is one table's open bill.
type TableBillResponse struct {
	TableID string     `json:"table_id"`
	Orders  []APIOrder `json:"orders"`
	Total   int64      `json:"total"`
}

// ActiveTablesResponse is the active-table count.
type ActiveTablesResponse struct {
	Count int `json:"count"`
}

// StatsResponse holds aggregate statistics for one period.
type StatsResponse struct {
	Period     string `json:"period"` // "daily", "monthly", "yearly"
	Revenue    int64  `json:"revenue"`
	OrderCount int    `json:"order_count"`
	Cancelled  int    `json:"cancelled"`
}

// ProductsResponse wraps the catalog list endpoint.
type ProductsResponse struct {
	Products []model.Product `json:"products"`
}

// CreateOrderRequest is the create-order payload.
type CreateOrderRequest struct {
	TableID     string        `json:"table_id"`
	Items       []APILineItem `json:"items"`
	RequestNote string        `json:"request_note,omitempty"`
}

// singleOrderResponse wraps endpoints returning one order.
type singleOrderResponse struct {
	Order APIOrder `json:"order"`
}
