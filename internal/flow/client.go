// Package flow implements the client side of the account activation journey:
// the single-shot token gate, the live password policy engine, and the
// password-creation state machine that drives the three server calls.
package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultRequestTimeout bounds each server call. A hung request fails instead
// of leaving the flow in its in-flight state forever.
const defaultRequestTimeout = 30 * time.Second

// User is the profile shape exchanged with the activation endpoints.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// APIError is a non-2xx response from the activation API. Message carries the
// server-supplied text when the body was decodable.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the server message when present.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("activation api returned status %d", e.StatusCode)
}

// TokenCheck is the decoded body of the validate-password-token call.
type TokenCheck struct {
	Valid   bool   `json:"valid"`
	User    *User  `json:"user"`
	Message string `json:"message"`
}

// Client calls the activation endpoints. All calls run under a bounded
// per-call timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestTimeout sets the per-call timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates a client for the activation API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    defaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// ValidateToken checks the (accountID, secret) pair. A 2xx response with
// valid=false is a normal outcome, not an error.
func (c *Client) ValidateToken(ctx context.Context, accountID, secret string) (*TokenCheck, error) {
	path := fmt.Sprintf("/api/auth/validate-password-token/%s/%s/",
		url.PathEscape(accountID), url.PathEscape(secret))

	var check TokenCheck
	if err := c.post(ctx, path, nil, &check); err != nil {
		return nil, err
	}

	return &check, nil
}

// CreatePassword sets the account's first password using the activation pair.
func (c *Client) CreatePassword(ctx context.Context, accountID, secret, password string) error {
	path := fmt.Sprintf("/api/auth/create-password/%s/%s/",
		url.PathEscape(accountID), url.PathEscape(secret))

	body := map[string]string{"password": password}
	return c.post(ctx, path, body, nil)
}

// Login authenticates with the just-created credentials and returns the
// server's profile for the session.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	body := map[string]string{"username": username, "password": password}

	var response struct {
		User User `json:"user"`
	}
	if err := c.post(ctx, "/login/", body, &response); err != nil {
		return nil, err
	}

	return &response.User, nil
}

// post issues a bounded POST call and decodes a 2xx body into out when out is
// non-nil. Non-2xx responses become an *APIError carrying the server message
// when one was decodable.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Message
		}

		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return nil
}
