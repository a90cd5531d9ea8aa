// Package client talks to the record store HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

// ErrNotFound matches StatusError values for 404 responses.
var ErrNotFound = errors.New("record not found")

// StatusError is a non-2xx response from the store.
type StatusError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "status " + strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("failed to %s: %s", e.Op, text)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client wraps the record store endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New constructs a client for the store rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches one page. Zero page or limit leaves the choice to the server.
func (c *Client) List(ctx context.Context, page, limit int) (records.Page, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	endpoint := c.baseURL + "/records"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return records.Page{}, err
	}
	var out records.Page
	if err := c.do(req, "load records", &out); err != nil {
		return records.Page{}, err
	}
	return out, nil
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, id string) (records.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/records/"+url.PathEscape(id), nil)
	if err != nil {
		return records.Record{}, err
	}
	var out records.Record
	if err := c.do(req, "load record", &out); err != nil {
		return records.Record{}, err
	}
	return out, nil
}

// Update sends a partial update and returns the canonical record.
func (c *Client) Update(ctx context.Context, patch records.Patch) (records.Record, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return records.Record{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/records", bytes.NewReader(body))
	if err != nil {
		return records.Record{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var out records.Record
	if err := c.do(req, "update record", &out); err != nil {
		return records.Record{}, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, op string, dest any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Detail: body.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to %s: decode response: %w", op, err)
	}
	return nil
}
