package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/ekaya/cafelive/internal/model"
)

// ListOrders fetches the authoritative order snapshot, optionally
// filtered by status. An empty status returns every current order.
func (c *Client) ListOrders(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}

	var resp OrdersResponse
	if err := c.get(ctx, "/orders", query, &resp); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]model.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		orders = append(orders, o.ToModel())
	}
	return orders, nil
}

// CreateOrder submits a new order and returns the backend's record of it,
// including the server-assigned id and creation time.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	var resp singleOrderResponse
	if err := c.post(ctx, "/orders", req, &resp, nil); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	order := resp.Order.ToModel()
	return &order, nil
}

// AdvanceStatus asks the backend to move an order to the given status.
// The backend enforces the lifecycle graph; the returned order is its
// authoritative state.
func (c *Client) AdvanceStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	payload := map[string]string{"status": string(status)}

	var resp singleOrderResponse
	if err := c.post(ctx, "/orders/"+strconv.FormatInt(id, 10)+"/status", payload, &resp, nil); err != nil {
		return nil, fmt.Errorf("advance order %d: %w", id, err)
	}

	order := resp.Order.ToModel()
	return &order, nil
}

// MarkPaid marks an order paid.
func (c *Client) MarkPaid(ctx context.Context, id int64) (*model.Order, error) {
	var resp singleOrderResponse
	if err := c.post(ctx, "/orders/"+strconv.FormatInt(id, 10)+"/pay", nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("mark order %d paid: %w", id, err)
	}

	order := resp.Order.ToModel()
	return &order, nil
}

// CancelOrder requests cancellation. The backend makes the authoritative
// window check at request time: a response with Cancelled=false is an
// expected outcome, not an error, and Order carries the state to re-sync.
// The idempotency key makes a retried request safe.
func (c *Client) CancelOrder(ctx context.Context, id int64) (*CancelResponse, error) {
	headers := http.Header{}
	headers.Set("Idempotency-Key", uuid.NewString())

	var resp CancelResponse
	if err := c.post(ctx, "/orders/"+strconv.FormatInt(id, 10)+"/cancel", nil, &resp, headers); err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", id, err)
	}

	return &resp, nil
}
