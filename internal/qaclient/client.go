// Package qaclient provides a client for the remote question-answering service.
package qaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/models"
)

// Client is a question-answering service client.
// The endpoint is fixed at construction.
type Client struct {
	endpoint   string
	statusURL  string
	timeout    time.Duration
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// Compile-time assertion: Client implements QAClient
var _ interfaces.QAClient = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit limits outgoing requests per second. Zero or less means unlimited.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithStatusURL sets the URL checked by Status. Defaults to the endpoint's root.
func WithStatusURL(statusURL string) ClientOption {
	return func(c *Client) {
		c.statusURL = statusURL
	}
}

// NewClient creates a new client posting questions to endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.statusURL == "" {
		c.statusURL = rootURL(endpoint)
	}

	return c
}

// rootURL returns scheme://host/ of the endpoint, or the endpoint itself if it does not parse
func rootURL(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return endpoint
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}).String()
}

// Endpoint returns the URL questions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// APIError represents a non-success response from the service.
// Error() returns only the user-facing message: the service detail when
// present, otherwise a message carrying the status code.
type APIError struct {
	StatusCode int
	Detail     string
	Endpoint   string
	Err        error // set when the error body could not be decoded
}

func (e *APIError) Error() string {
	return e.Detail
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// statusMessage is the fallback message for failures without a usable detail
func statusMessage(statusCode int) string {
	return fmt.Sprintf("HTTP error! status: %d", statusCode)
}

// newAPIError builds an APIError from a failed response body
func newAPIError(statusCode int, endpoint string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Detail:     statusMessage(statusCode),
		Endpoint:   endpoint,
	}

	var errBody models.ErrorBody
	if err := json.Unmarshal(body, &errBody); err != nil {
		apiErr.Err = fmt.Errorf("failed to decode error body: %w", err)
		return apiErr
	}

	if detail, ok := errBody.Message(); ok {
		apiErr.Detail = detail
	}
	return apiErr
}

// Ask posts the question and returns the parsed answer.
func (c *Client) Ask(ctx context.Context, question string) (*models.AnswerResult, error) {
	payload, err := json.Marshal(models.QuestionRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to encode question: %w", err)
	}

	var result models.AnswerResult
	if err := c.do(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status checks the service root.
func (c *Client) Status(ctx context.Context) (*interfaces.ServiceStatus, error) {
	var status interfaces.ServiceStatus
	if err := c.do(ctx, http.MethodGet, c.statusURL, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// do performs one request and decodes a success body into result.
func (c *Client) do(ctx context.Context, method, reqURL string, body io.Reader, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("url", reqURL).
			Msg("QA service request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("url", reqURL).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("QA service response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return &APIError{
				StatusCode: resp.StatusCode,
				Detail:     statusMessage(resp.StatusCode),
				Endpoint:   reqURL,
				Err:        fmt.Errorf("failed to read error body: %w", err),
			}
		}
		return newAPIError(resp.StatusCode, reqURL, respBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
