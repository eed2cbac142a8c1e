package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/session"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "attendcli/1.0"

	headerRequestID = "X-Request-ID"
	headerTenant    = "X-Tenant-ID"
)

// Client is an HTTP client for the attendance API.
type Client struct {
	baseURL        string
	tenant         string
	store          session.Store
	httpClient     *http.Client
	logger         *zap.Logger
	onUnauthorized func()
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(client *Client) {
		client.baseURL = url
	}
}

// WithTenant sends the tenant id with every request.
func WithTenant(tenant string) ClientOption {
	return func(client *Client) {
		client.tenant = tenant
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(client *Client) {
		if l != nil {
			client.logger = l
		}
	}
}

// WithUnauthorizedHandler registers fn to run after a 401 on an
// authenticated call has cleared the session.
func WithUnauthorizedHandler(fn func()) ClientOption {
	return func(client *Client) {
		client.onUnauthorized = fn
	}
}

// NewClient creates a new API client that reads and clears session state
// through store.
func NewClient(store session.Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: models.EnvProduction.BaseURL(),
		store:   store,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// auth selects the bearer token for a request.
type auth struct {
	token   string
	session bool
}

var noAuth = auth{}

// bearer authenticates with an explicit token, such as an OTP token.
func bearer(token string) auth {
	return auth{token: token}
}

// sessionAuth authenticates with the stored access token and returns the
// stored pair.
func (c *Client) sessionAuth() (auth, *models.TokenPair, error) {
	pair, err := session.LoadTokens(c.store)
	if err != nil {
		return auth{}, nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return auth{token: pair.AccessToken, session: true}, pair, nil
}

// request performs an HTTP request and returns the response body.
func (c *Client) request(ctx context.Context, method, path string, body any, a auth) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(headerRequestID, requestID)
	if c.tenant != "" {
		req.Header.Set(headerTenant, c.tenant)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err)
	}

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp.StatusCode, respBody)
		apiErr.RequestID = requestID

		if resp.StatusCode == http.StatusUnauthorized && a.session {
			c.expireSession()
		}
		return nil, apiErr
	}

	return respBody, nil
}

// expireSession clears stored credentials after the backend rejected them.
func (c *Client) expireSession() {
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear session", zap.Error(err))
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func decodeError(status int, body []byte) *APIError {
	var envelope struct {
		ErrorCodes []string `json:"errorCodes"`
		Message    string   `json:"message"`
		Error      string   `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	msg := envelope.Message
	if msg == "" {
		msg = envelope.Error
	}

	return &APIError{
		StatusCode: status,
		Codes:      envelope.ErrorCodes,
		Message:    msg,
	}
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, path string, a auth) ([]byte, error) {
	return c.request(ctx, http.MethodGet, path, nil, a)
}

// post performs a POST request.
func (c *Client) post(ctx context.Context, path string, body any, a auth) ([]byte, error) {
	return c.request(ctx, http.MethodPost, path, body, a)
}

// decode unmarshals a response body into v, tagging failures as
// malformed responses.
func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
