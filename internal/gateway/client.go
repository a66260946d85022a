// Package gateway is the HTTP client for the external retail API that owns
// all business data. This service never reimplements that API; every call
// here is a documented contract with the upstream collaborator.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// UpstreamError carries the non-success status of an external API response.
// A failed submission is terminal for that attempt; the operator retries
// explicitly and local checkout state is left untouched by callers.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// ErrUnauthorized is returned when the upstream rejects the bearer token.
var ErrUnauthorized = errors.New("upstream rejected credentials")

// Client talks to the external retail API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New returns a Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Login exchanges credentials for a token and operator profile.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var out LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &out, nil
}

// ListProducts fetches a page of the catalog with optional category/search
// filters, forwarding the caller's bearer token.
func (c *Client) ListProducts(ctx context.Context, token string, f ProductFilter) (*ProductPage, error) {
	q := url.Values{}
	if f.CategoryID != nil {
		q.Set("categoryId", strconv.Itoa(*f.CategoryID))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.PageNumber <= 0 {
		f.PageNumber = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	q.Set("pageNumber", strconv.Itoa(f.PageNumber))
	q.Set("pageSize", strconv.Itoa(f.PageSize))

	var out ProductPage
	if err := c.getJSON(ctx, token, "/products?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCustomer fetches a premium-client record.
func (c *Client) GetCustomer(ctx context.Context, token string, id int) (*Customer, error) {
	// some deployments wrap the record in a data envelope
	var raw struct {
		Data *Customer `json:"data"`
		Customer
	}
	if err := c.getJSON(ctx, token, fmt.Sprintf("/customers/%d", id), &raw); err != nil {
		return nil, err
	}
	if raw.Data != nil {
		return raw.Data, nil
	}
	return &raw.Customer, nil
}

// ListCategories fetches the product categories. Upstream sends more fields;
// the terminal only keeps id and name.
func (c *Client) ListCategories(ctx context.Context, token string) ([]Category, error) {
	var out []Category
	if err := c.getJSON(ctx, token, "/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpenses fetches a page of expenses. The payload shape belongs to the
// upstream; it is forwarded verbatim.
func (c *Client) ListExpenses(ctx context.Context, token string, f ExpenseFilter) (json.RawMessage, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.PageNumber <= 0 {
		f.PageNumber = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	q.Set("pageNumber", strconv.Itoa(f.PageNumber))
	q.Set("pageSize", strconv.Itoa(f.PageSize))

	var out json.RawMessage
	if err := c.getJSON(ctx, token, "/expenses?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExpense forwards a new expense record and returns the created record
// verbatim.
func (c *Client) CreateExpense(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/expenses", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError(resp)
	}

	var out json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode created expense: %w", err)
	}
	return out, nil
}

// ExpenseSummary fetches the aggregated expense totals, forwarded verbatim.
func (c *Client) ExpenseSummary(ctx context.Context, token string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.getJSON(ctx, token, "/expenses/summary", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopSellingProducts fetches the dashboard's top sellers. A non-positive
// count falls back to the dashboard default of 4.
func (c *Client) TopSellingProducts(ctx context.Context, token string, count int) (json.RawMessage, error) {
	if count <= 0 {
		count = 4
	}
	var out json.RawMessage
	if err := c.getJSON(ctx, token, "/dashboard/topselling?count="+strconv.Itoa(count), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CashierPerformance fetches per-cashier sale aggregates, forwarded verbatim.
func (c *Client) CashierPerformance(ctx context.Context, token string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.getJSON(ctx, token, "/dashboard/cashierperformance", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitSale posts the finalized sale. Success means the upstream accepted
// it; everything after that point (stock, balances, reports) is upstream
// responsibility.
func (c *Client) SubmitSale(ctx context.Context, token string, sale SaleSubmission) error {
	body, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("marshal sale: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sale", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("submit sale: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return upstreamError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return upstreamError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func upstreamError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error == "" {
		payload.Error = resp.Status
	}
	return &UpstreamError{Status: resp.StatusCode, Message: payload.Error}
}
