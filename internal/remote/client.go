// Package remote talks to the todo collection endpoint. It is a thin
// transport: one HTTP round trip per call, no retries, no caching.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
)

// Client performs the four collection operations against a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

// WithToken sets a bearer token source, consulted on every request.
func WithToken(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for baseURL (no trailing slash).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		token:   func() string { return "" },
		log:     log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type listEnvelope struct {
	Todos []model.Item `json:"todos"`
}

// List fetches every item.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	var env listEnvelope
	if err := c.do(ctx, "list", http.MethodGet, "/todos", 0, nil, listSchema, &env); err != nil {
		return nil, err
	}
	if env.Todos == nil {
		env.Todos = []model.Item{}
	}
	return env.Todos, nil
}

// Create adds an item; the server assigns its id.
func (c *Client) Create(ctx context.Context, d model.Draft) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, "create", http.MethodPost, "/todos/add", 0, d, itemSchema, &it)
	return it, err
}

// Update applies a partial update to item id.
func (c *Client) Update(ctx context.Context, id int, p model.Patch) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, "update", http.MethodPut, "/todos/"+strconv.Itoa(id), id, p, itemSchema, &it)
	return it, err
}

// Delete removes item id and returns the deleted record as confirmation.
func (c *Client) Delete(ctx context.Context, id int) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, "delete", http.MethodDelete, "/todos/"+strconv.Itoa(id), id, nil, itemSchema, &it)
	return it, err
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, op, method, path string, id int, body any, schema *jsonschema.Schema, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "method", method, "path", path, "err", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.Debug("request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{ID: id, Message: messageOf(raw)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &ServerError{StatusCode: resp.StatusCode, Message: messageOf(raw)}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &DecodeError{Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &DecodeError{Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func messageOf(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return ""
	}
	return eb.Message
}
