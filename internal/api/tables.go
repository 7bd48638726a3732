package api

import (
	"context"
	"fmt"
	"net/url"
)

// GetTableBill fetches one table's open bill.
func (c *Client) GetTableBill(ctx context.Context, tableID string) (*TableBillResponse, error) {
	var resp TableBillResponse
	if err := c.get(ctx, "/tables/"+url.PathEscape(tableID)+"/bill", nil, &resp); err != nil {
		return nil, fmt.Errorf("get table bill %s: %w", tableID, err)
	}
	return &resp, nil
}

// GetActiveTableCount fetches the number of currently occupied tables.
func (c *Client) GetActiveTableCount(ctx context.Context) (int, error) {
	var resp ActiveTablesResponse
	if err := c.get(ctx, "/tables/active", nil, &resp); err != nil {
		return 0, fmt.Errorf("get active tables: %w", err)
	}
	return resp.Count, nil
}
