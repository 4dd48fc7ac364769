package platform

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/rolegate/internal/errors"
	"github.com/felixgeelhaar/rolegate/internal/log"
	"github.com/felixgeelhaar/rolegate/internal/version"
)

// DefaultTimeout bounds every request unless overridden
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token for protected calls
type TokenSource func() string

// Client is the backend API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokenSource TokenSource
	userAgent   string
	logger      *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithTokenSource wires the bearer token used on protected calls
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.tokenSource = src
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger for request tracing
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: version.GetInfo().UserAgent(),
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource replaces the bearer token source after construction
func (c *Client) SetTokenSource(src TokenSource) {
	c.tokenSource = src
}

// SetToken pins a fixed bearer token
func (c *Client) SetToken(token string) {
	c.tokenSource = func() string { return token }
}

func (c *Client) bearer() string {
	if c.tokenSource == nil {
		return ""
	}
	return c.tokenSource()
}

// doRequest performs an HTTP request, injecting the bearer token when
// authenticated is set.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, authenticated bool) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncodeRequest, "failed to encode request body", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodeRequest, "failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if authenticated {
		if token := c.bearer(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed",
			"method", method, "path", path, "request_id", requestID, "error", err.Error())
		return nil, errors.NewNetworkError(err)
	}

	c.logger.DebugContext(ctx, "request completed",
		"method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

// APIError is a non-2xx response reduced to one message
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// StatusOf returns the HTTP status behind err, or 0 if it did not come
// from a response
func StatusOf(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ErrorResponse lists the fields a backend may use to explain a failure
type ErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// parseResponse decodes a 2xx body into target or normalizes a failure
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp, body),
		}
		return errors.Wrap(errors.ErrCodeRequestFailed, apiErr.Message, apiErr)
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil && err != io.EOF {
			return errors.Wrap(errors.ErrCodeProtocol, "failed to decode response", err)
		}
	}

	return nil
}

// errorMessage prefers detail, message and error fields, then the first
// field error of a validation body, then the status text.
func errorMessage(resp *http.Response, body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		for _, candidate := range []string{errResp.Detail, errResp.Message, errResp.Error} {
			if strings.TrimSpace(candidate) != "" {
				return candidate
			}
		}
	}

	if msg := fieldErrorMessage(body); msg != "" {
		return msg
	}

	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}

// fieldErrorMessage flattens {"email": ["already exists."]} into
// "email: already exists." choosing the first field alphabetically.
func fieldErrorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return ""
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var messages []string
		if err := json.Unmarshal(fields[name], &messages); err == nil && len(messages) > 0 && strings.TrimSpace(messages[0]) != "" {
			if name == "non_field_errors" {
				return messages[0]
			}
			return name + ": " + messages[0]
		}
		var message string
		if err := json.Unmarshal(fields[name], &message); err == nil && strings.TrimSpace(message) != "" {
			return name + ": " + message
		}
	}
	return ""
}
