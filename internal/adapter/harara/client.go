package harara

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harara-heat/harara-dashboard/internal/observability"
)

// Credentials supply the bearer token for a bound client and are invalidated
// when the backend answers 401.
type Credentials interface {
	Token() string
	Invalidate(ctx context.Context)
}

// Client calls the Harara backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an unbound client. A zero timeout leaves requests bounded
// only by their context.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// For returns a copy of the client that authenticates with creds. A nil creds
// returns an unbound copy.
func (c *Client) For(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

// CheckReadiness reports whether the backend answers its health endpoint.
func (c *Client) CheckReadiness(ctx context.Context) error {
	var h struct {
		Status string `json:"status"`
	}
	return c.For(nil).call(ctx, request{op: "health", method: http.MethodGet, path: "/health"}, &h)
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	accept string
}

func (c *Client) token() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Token()
}

// send performs the request and returns a response with a 2xx status. The
// caller closes the body.
func (c *Client) send(ctx context.Context, rq request) (*http.Response, error) {
	var body io.Reader
	if rq.body != nil {
		data, err := json.Marshal(rq.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", rq.op, err)
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + rq.path
	if len(rq.query) > 0 {
		u += "?" + rq.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, rq.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if rq.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	accept := rq.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.BackendDuration.WithLabelValues(rq.op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.BackendRequests.WithLabelValues(rq.op, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", rq.op, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.metrics.BackendRequests.WithLabelValues(rq.op, "success").Inc()
		return resp, nil
	}

	defer resp.Body.Close()
	apiErr := newAPIError(rq.op, resp)
	if resp.StatusCode == http.StatusUnauthorized {
		c.metrics.BackendRequests.WithLabelValues(rq.op, "unauthorized").Inc()
		if c.creds != nil {
			c.metrics.Unauthorized.Inc()
			c.creds.Invalidate(ctx)
			c.logger.Warn("backend rejected session token", "operation", rq.op)
		}
		return nil, apiErr
	}
	c.metrics.BackendRequests.WithLabelValues(rq.op, "error").Inc()
	return nil, apiErr
}

// call sends the request and decodes a JSON response into out, if non-nil.
func (c *Client) call(ctx context.Context, rq request, out any) error {
	resp, err := c.send(ctx, rq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", rq.op, err)
	}
	return nil
}

// fetch sends the request and returns the raw body.
func (c *Client) fetch(ctx context.Context, rq request) ([]byte, string, error) {
	resp, err := c.send(ctx, rq)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%s: read response: %w", rq.op, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
