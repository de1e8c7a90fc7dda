// Package store is the REST client for the Billed backend.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/session"
)

// HTTPClient is the subset of *http.Client used by the store
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

var _ port.Store = (*Client)(nil)

// Client talks to the backend
type Client struct {
	baseURL    *url.URL
	httpClient HTTPClient
	storage    port.Storage
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the transport
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a client for the backend at baseURL. The bearer token is read
// from storage on every call.
func New(baseURL string, storage port.Storage, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host required", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		storage:    storage,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend origin
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges credentials for a jwt. No Authorization header is sent.
func (c *Client) Login(ctx context.Context, credentials []byte) (*port.LoginResult, error) {
	var result port.LoginResult
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   credentials,
		noAuth: true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Bills returns the bills resource
func (c *Client) Bills() port.BillService {
	return billService{c: c}
}

// Users returns the users resource
func (c *Client) Users() port.UserService {
	return userService{c: c}
}

// Bill fetches one bill by id
func (c *Client) Bill(ctx context.Context, id string) (*entity.Bill, error) {
	var bill entity.Bill
	if err := c.do(ctx, call{method: http.MethodGet, path: "/bills/" + url.PathEscape(id)}, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// User fetches one account by id
func (c *Client) User(ctx context.Context, id string) (*entity.Account, error) {
	var account entity.Account
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users/" + url.PathEscape(id)}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

type call struct {
	method string
	path   string
	body   []byte
	opts   port.RequestOptions
	noAuth bool
}

func (c *Client) do(ctx context.Context, req call, out interface{}) error {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL.String()+req.path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if !req.opts.NoContentType {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.noAuth {
		if jwt := session.Token(c.storage); jwt != "" {
			httpReq.Header.Set("Authorization", "Bearer "+jwt)
		}
	}
	for k, v := range req.opts.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Store call",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
	} else {
		msg = strings.TrimSpace(string(body))
	}
	return &APIError{Status: status, Message: msg}
}
