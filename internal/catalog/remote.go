package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/openmart/martcart/internal/domain"
)

// Client is a Store backed by a remote catalog HTTP API. Calls go
// through a circuit breaker so a failing catalog degrades fast instead
// of tying up request handlers.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Product]
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker[*domain.Product](gobreaker.Settings{
		Name:    "catalog",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return c.breaker.Execute(func() (*domain.Product, error) {
		return c.fetchProduct(ctx, id)
	})
}

func (c *Client) fetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	u := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrProductNotFound
	default:
		return nil, fmt.Errorf("catalog returned status %d for product %s", resp.StatusCode, id)
	}

	var p domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return &p, nil
}

type stockRequest struct {
	Items []stockItem `json:"items"`
}

type stockItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) Deduct(ctx context.Context, items []domain.LineItem) error {
	return c.postStock(ctx, "/products/deduct", items)
}

// Restore returns previously deducted stock to the catalog.
func (c *Client) Restore(ctx context.Context, items []domain.LineItem) error {
	return c.postStock(ctx, "/products/restore", items)
}

func (c *Client) postStock(ctx context.Context, path string, items []domain.LineItem) error {
	body := stockRequest{Items: make([]stockItem, len(items))}
	for i, li := range items {
		body.Items[i] = stockItem{ProductID: li.ProductID, Quantity: li.Quantity}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal stock request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build stock request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrProductNotFound
	case http.StatusConflict:
		return ErrInsufficientStock
	default:
		return fmt.Errorf("catalog returned status %d on %s", resp.StatusCode, path)
	}
}
