// Package apiclient is a typed client for the inventory HTTP API.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"inventory/internal/core"
)

const (
	defaultTimeout     = 15 * time.Second
	expensesByCategory = "/expenses/category"
	breakdownPath      = "/api/expenses/breakdown"
	maxErrorBody       = 4 << 10
)

// Client handles communication with the inventory API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client for baseURL, e.g. http://localhost:8081.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// ExpensesByCategory fetches the records matching f. Cancelling ctx aborts
// the request.
func (c *Client) ExpensesByCategory(ctx context.Context, f core.ExpenseFilter) ([]core.ExpenseByCategory, error) {
	q := url.Values{}
	if !f.StartDate.IsEmpty() {
		q.Set("startDate", f.StartDate.String())
	}
	if !f.EndDate.IsEmpty() {
		q.Set("endDate", f.EndDate.String())
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}

	var out []core.ExpenseByCategory
	if err := c.getJSON(ctx, expensesByCategory, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Breakdown fetches the server-side aggregation.
func (c *Client) Breakdown(ctx context.Context, f core.BreakdownFilter) ([]core.CategoryTotal, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if !f.StartDate.IsEmpty() {
		q.Set("startDate", f.StartDate.String())
	}
	if !f.EndDate.IsEmpty() {
		q.Set("endDate", f.EndDate.String())
	}

	var out []core.CategoryTotal
	if err := c.getJSON(ctx, breakdownPath, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
