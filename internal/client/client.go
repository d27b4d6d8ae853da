// Package client talks to the Qwery server's JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultServerURL is used when no server URL is configured.
const DefaultServerURL = "http://localhost:4096"

// Timeouts for calls that do not stream.
const (
	RequestTimeout = 30 * time.Second
	HealthTimeout  = 500 * time.Millisecond
	TestTimeout    = 15 * time.Second
)

// Client is an HTTP client for one Qwery server.
type Client struct {
	// BaseURL is the server root, e.g. http://localhost:4096.
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

// New creates a client for the server at baseURL. The HTTP client carries no
// overall timeout because chat responses stream for as long as the agent
// runs; callers bound requests with their context.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// SetBasicAuth enables basic authentication for servers started with a
// password.
func (c *Client) SetBasicAuth(username, password string) {
	c.Username = username
	c.Password = password
}

// APIBase returns the root of the JSON API.
func (c *Client) APIBase() string {
	return c.BaseURL + "/api"
}

func (c *Client) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Password != "" {
		user := c.Username
		if user == "" {
			user = "qwery"
		}
		req.SetBasicAuth(user, c.Password)
	}
	return req, nil
}

// do sends a request to path under the API base and returns the response.
// The caller closes the body.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, c.APIBase()+path, body)
	if err != nil {
		return nil, err
	}
	slog.Debug("server request", "method", method, "path", path)
	return c.HTTPClient.Do(req)
}

// call performs a JSON request bounded by RequestTimeout and decodes a 2xx
// response into out. Non-2xx responses become a RequestError for op.
func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewRequestError(op, resp.StatusCode, errorText(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return invalidJSON(data)
	}
	return nil
}

// errorText extracts a readable message from an error body. The server
// reports failures as {"code", "params", "details"} or {"error"}.
func errorText(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, s := range []string{payload.Details, payload.Error, payload.Message} {
			if s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// isHTML reports whether a response that should be JSON is an HTML page.
func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	text := strings.TrimLeft(string(body), " \t\r\n")
	return strings.HasPrefix(text, "<") && strings.Contains(text, "</")
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrServerUnavailable, resp.StatusCode)
	}
	return nil
}
