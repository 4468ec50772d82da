package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/zonecheck/internal/model"
)

const (
	// DefaultTimeout bounds every request unless overridden with WithTimeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "zonecheck"

	checkSecurityPath = "/api/check-security"
	configureUserPath = "/api/configure-user"
	healthPath        = "/"

	// maxErrorBody limits how much of an error body is read.
	maxErrorBody = 64 << 10
)

// Client is a client of the risk-assessment service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	timeout      time.Duration
	proxyAddress string
	userAgent    string
	custom       bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of each request. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithSOCKS5Proxy routes every request through the SOCKS5 proxy at
// address ("host:port").
func WithSOCKS5Proxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithHTTPClient replaces the underlying HTTP client. Timeout and proxy
// options are ignored when it is used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.custom = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    slog.Default(),
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.custom {
		transport, err := NewTransport(c.proxyAddress, c.userAgent)
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
		}
	}
	return c, nil
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckSecurity asks the service to assess the risk at the requested position.
func (c *Client) CheckSecurity(ctx context.Context, req model.CheckRequest) (*model.RawResponse, error) {
	if req.HomeAddresses == nil {
		req.HomeAddresses = []string{}
	}

	var resp model.RawResponse
	if err := c.post(ctx, checkSecurityPath, req, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("security check completed",
		"zone", resp.Zone,
		"score", resp.Score,
		"shape", resp.Shape().String())
	return &resp, nil
}

// ConfigureUser submits cfg for validation. A nil error authorizes the
// caller to persist cfg locally. A refusal wraps model.ErrValidationRejected
// and the *model.HTTPError carrying the service message.
func (c *Client) ConfigureUser(ctx context.Context, cfg model.UserConfig) error {
	err := c.post(ctx, configureUserPath, model.NewConfigureRequest(cfg), nil)
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: %w", model.ErrValidationRejected, httpErr)
	}
	return err
}

// Health is the body returned by the service root.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// Health queries the service health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var h Health
	if err := c.do(httpReq, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err)
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request finished",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeHTTPError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return classifyTransportError(err)
		}
		return fmt.Errorf("%w: %w", model.ErrMalformedResponse, err)
	}
	return nil
}

// decodeHTTPError builds an HTTPError from a non-2xx response, using the
// "error" field of a JSON body when present.
func decodeHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var svcErr model.ServiceError
	message := ""
	if err := json.Unmarshal(body, &svcErr); err == nil {
		message = strings.TrimSpace(svcErr.Error)
	}
	return model.NewHTTPError(resp.StatusCode, message)
}

func classifyTransportError(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %w: %w", model.ErrNetworkUnavailable, model.ErrRequestTimeout, err)
	}
	return fmt.Errorf("%w: %w", model.ErrNetworkUnavailable, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
