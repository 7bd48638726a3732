package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ekaya/cafelive/internal/model"
)

// ListProducts fetches the product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var resp ProductsResponse
	if err := c.get(ctx, "/products", nil, &resp); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return resp.Products, nil
}

// CreateProduct adds a catalog entry. Admin only.
func (c *Client) CreateProduct(ctx context.Context, name string, price int64) (*model.Product, error) {
	payload := map[string]any{"name": name, "price": price}

	var resp struct {
		Product model.Product `json:"product"`
	}
	if err := c.post(ctx, "/products", payload, &resp, nil); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &resp.Product, nil
}

// DeleteProduct removes a catalog entry. Admin only.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.del(ctx, "/products/"+strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}
