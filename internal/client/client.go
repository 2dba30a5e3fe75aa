// Package client is an HTTP client for the /foods resource.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bryan-buckman/gorestaurant/internal/model"
)

// DefaultTimeout bounds a single request when no option overrides it.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept on Error.
const maxErrorBody = 512

// ErrRejected matches every failed remote call via errors.Is.
var ErrRejected = errors.New("remote call rejected")

// Error describes a rejected remote call: a transport failure, a non-2xx
// status or a body that could not be decoded.
type Error struct {
	Op         string
	Method     string
	Path       string
	StatusCode int // 0 when no response arrived
	Body       string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", e.Op, e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrRejected }

// Client talks to a json-server compatible /foods endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the resource rooted at baseURL, e.g. "http://localhost:3333".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every food.
func (c *Client) List(ctx context.Context) ([]model.Food, error) {
	var foods []model.Food
	if err := c.do(ctx, "list", http.MethodGet, "/foods", nil, &foods); err != nil {
		return nil, err
	}
	if foods == nil {
		foods = []model.Food{}
	}
	return foods, nil
}

// Create posts a new food and returns the stored copy with its assigned ID.
func (c *Client) Create(ctx context.Context, f model.Food) (model.Food, error) {
	body := struct {
		Name        string `json:"name"`
		Image       string `json:"image"`
		Price       string `json:"price"`
		Description string `json:"description"`
		Available   bool   `json:"available"`
	}{f.Name, f.Image, f.Price, f.Description, f.Available}

	var created model.Food
	err := c.do(ctx, "create", http.MethodPost, "/foods", body, &created)
	return created, err
}

// Update replaces the food with the given ID.
func (c *Client) Update(ctx context.Context, id int64, f model.Food) (model.Food, error) {
	f.ID = id
	var updated model.Food
	err := c.do(ctx, "update", http.MethodPut, foodPath(id), f, &updated)
	return updated, err
}

// Delete removes the food with the given ID. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, foodPath(id), nil, nil)
}

func foodPath(id int64) string {
	return "/foods/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	reject := func(status int, body string, err error) error {
		return &Error{Op: op, Method: method, Path: path, StatusCode: status, Body: body, Err: err}
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return reject(0, "", fmt.Errorf("encode request: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return reject(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return reject(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return reject(resp.StatusCode, strings.TrimSpace(string(msg)), nil)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return reject(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}
