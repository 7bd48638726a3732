package api

import (
	"context"
	"fmt"
	"net/url"
)

// Aggregate periods recognized by the stats endpoint.
const (
	PeriodDaily   = "daily"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// GetStats fetches aggregate statistics for the given period.
func (c *Client) GetStats(ctx context.Context, period string) (*StatsResponse, error) {
	query := url.Values{}
	query.Set("period", period)

	var resp StatsResponse
	if err := c.get(ctx, "/stats", query, &resp); err != nil {
		return nil, fmt.Errorf("get %s stats: %w", period, err)
	}
	return &resp, nil
}
