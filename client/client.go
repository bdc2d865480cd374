package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://sheets.googleapis.com"
	defaultRequestTimeout = 60 * time.Second
	defaultMaxAttempts    = 3
	defaultBaseBackoff    = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultUserAgent      = "sheetpilot-cli/dev"
)

// Client is a spreadsheet service API client.
type Client struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client

	requestTimeout time.Duration
	maxAttempts    int
	baseBackoff    time.Duration
	maxBackoff     time.Duration
	sleep          func(time.Duration)
	randInt63n     func(int64) int64
	now            func() time.Time
}

type rawResponse struct {
	StatusCode  int
	ContentType string
	RetryAfter  string
	Body        []byte
}

// New creates a new spreadsheet service client. An empty baseURL selects
// the public endpoint; token is sent as a bearer credential on every call.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Token:          token,
		UserAgent:      defaultUserAgent,
		HTTPClient:     &http.Client{},
		requestTimeout: defaultRequestTimeout,
		maxAttempts:    defaultMaxAttempts,
		baseBackoff:    defaultBaseBackoff,
		maxBackoff:     defaultMaxBackoff,
		sleep:          time.Sleep,
		randInt63n:     rand.Int63n,
		now:            time.Now,
	}
}

func (c *Client) doWithRetry(ctx context.Context, makeRequest func() (*http.Request, error)) (*rawResponse, error) {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := makeRequest()
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		timeout := c.requestTimeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		req = req.WithContext(reqCtx)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			cancel()
			if attempt < maxAttempts && isRetryableTransportError(err) {
				c.sleepWithBackoff(attempt, "")
				continue
			}
			return nil, fmt.Errorf("API request failed after %d attempt(s): %w", attempt, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		if readErr != nil {
			if attempt < maxAttempts && isRetryableTransportError(readErr) {
				c.sleepWithBackoff(attempt, "")
				continue
			}
			return nil, fmt.Errorf("reading response after %d attempt(s): %w", attempt, readErr)
		}

		if attempt < maxAttempts && shouldRetryStatus(resp.StatusCode) {
			c.sleepWithBackoff(attempt, resp.Header.Get("Retry-After"))
			continue
		}

		return &rawResponse{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			RetryAfter:  resp.Header.Get("Retry-After"),
			Body:        body,
		}, nil
	}

	return nil, fmt.Errorf("API request failed after %d attempt(s)", maxAttempts)
}

func isRetryableTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func shouldRetryStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) sleepWithBackoff(attempt int, retryAfterHeader string) {
	if d, ok := c.parseRetryAfter(retryAfterHeader); ok {
		c.sleep(d)
		return
	}

	base := c.baseBackoff
	if base <= 0 {
		base = defaultBaseBackoff
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay <= 0 {
			delay = defaultMaxBackoff
			break
		}
	}

	maxBackoff := c.maxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}
	if delay <= 0 {
		return
	}

	// Full jitter in [0, delay).
	if c.randInt63n != nil {
		delay = time.Duration(c.randInt63n(int64(delay)))
	}
	c.sleep(delay)
}

func (c *Client) parseRetryAfter(headerValue string) (time.Duration, bool) {
	v := strings.TrimSpace(headerValue)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		d := t.Sub(now())
		if d > 0 {
			return d, true
		}
	}
	return 0, false
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		u, err := url.Parse(c.BaseURL + path)
		if err != nil {
			return nil, fmt.Errorf("building URL: %w", err)
		}
		if query != nil {
			u.RawQuery = query.Encode()
		}
		req, err := http.NewRequest("GET", u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		c.setCommonHeaders(req)
		return req, nil
	})
	if err != nil {
		return err
	}
	if raw.StatusCode != http.StatusOK {
		return parseAPIError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw.Body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	raw, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		u, err := url.Parse(c.BaseURL + path)
		if err != nil {
			return nil, fmt.Errorf("building URL: %w", err)
		}
		if query != nil {
			u.RawQuery = query.Encode()
		}
		req, err := http.NewRequest(method, u.String(), bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		c.setCommonHeaders(req)
		return req, nil
	})
	if err != nil {
		return err
	}
	if raw.StatusCode != http.StatusOK {
		return parseAPIError(raw.StatusCode, raw.Body, raw.RetryAfter)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw.Body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// APIError is a typed error returned by API calls, with the HTTP status code.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	RetryAfter string
}

func (e *APIError) Error() string {
	if friendly := friendlyErrorMessage(e.StatusCode, e.Status, e.Message, e.RetryAfter); friendly != "" {
		return friendly
	}
	if e.Status != "" {
		return fmt.Sprintf("API error %d: %s — %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// friendlyErrorMessage translates known API error statuses into user-facing messages.
func friendlyErrorMessage(statusCode int, status, message, retryAfter string) string {
	if statusCode == http.StatusTooManyRequests {
		if retryAfter != "" {
			return fmt.Sprintf("rate limited by API; retry after %s", retryAfter)
		}
		return "rate limited by API; retry in a moment"
	}

	switch status {
	case "NOT_FOUND":
		return "spreadsheet not found — check the spreadsheet ID"
	case "PERMISSION_DENIED":
		return "permission denied — the token has no access to this spreadsheet"
	case "UNAUTHENTICATED":
		return "not authenticated: run 'sheetpilot auth set-token' or set --token / SHEETPILOT_TOKEN"
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION":
		return message // already human-readable, e.g. range parse errors
	default:
		return ""
	}
}

// IsNotFound returns true if the error is a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsMergedCellConflict reports whether the error is the service's rejection
// of a structural mutation because the sheet contains merged cells.
func IsMergedCellConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "merge")
}

func parseAPIError(statusCode int, body []byte, retryAfter string) error {
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return &APIError{
			StatusCode: statusCode,
			Status:     apiErr.Error.Status,
			Message:    apiErr.Error.Message,
			RetryAfter: retryAfter,
		}
	}
	return &APIError{StatusCode: statusCode, Message: string(body), RetryAfter: retryAfter}
}

func (c *Client) setCommonHeaders(req *http.Request) {
	userAgent := strings.TrimSpace(c.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	if c.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
}
