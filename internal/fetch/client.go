// internal/fetch/client.go
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bhzfoot/fixturebot/internal/utils"
)

// Sentinel classifications the orchestrator branches on. A forbidden response
// is an account-level problem and aborts the whole run; a not-found response
// just means "try the next source or strategy".
var (
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

// StatusError is a non-2xx response with its body attached for diagnostics.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, truncate(e.Body, 200))
}

// Unwrap maps the fatal and try-next status codes onto their sentinels so
// callers can use errors.Is without inspecting codes.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// DecodeError marks a 2xx response whose body was not parseable.
type DecodeError struct {
	URL   string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unparseable response from %s: %v", e.URL, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// MetricsRecorder receives per-request fetch outcomes. Implementations must
// be safe for concurrent use.
type MetricsRecorder interface {
	FetchRequest(host, status string)
	FetchRetry(host string)
}

// ClientConfig defines the fetcher's retry and pacing policy. The attempt
// count and backoff schedule are a contract the extraction layer relies on,
// not internal tuning.
type ClientConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	RateLimit     float64 // requests per second
	RateBurst     int
	UserAgent     string
	Headers       map[string]string
	Metrics       MetricsRecorder
}

// Client issues GET requests with timeout, rate limiting, retry, and
// exponential backoff, and classifies response statuses for the caller.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	rateLimiter   *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
	userAgent     string
	headers       map[string]string
	metrics       MetricsRecorder
	logger        utils.Logger
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// NewClient creates a fetcher with the given policy. Zero values get
// conservative defaults.
func NewClient(config ClientConfig, logger utils.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 20 * time.Second
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 1.0
	}
	if config.RateBurst == 0 {
		config.RateBurst = 1
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = utils.NopLogger{}
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter:   rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		userAgent:     config.UserAgent,
		headers:       config.Headers,
		metrics:       config.Metrics,
		logger:        logger,
	}
}

// Get performs a GET against path (resolved on the base URL, or absolute) with
// the given query parameters and returns the response body. Connection
// failures and 429 responses are retried with doubling backoff up to the
// attempt limit; 403 and 404 surface as their sentinels immediately; other
// non-2xx statuses fail with the body attached.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	target, err := c.resolve(path, params)
	if err != nil {
		return nil, err
	}

	host := requestHost(target)
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.doOnce(ctx, target)
		c.record(host, err)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !c.retryable(err) {
			return nil, err
		}
		if attempt == c.retryAttempts {
			break
		}

		if c.metrics != nil {
			c.metrics.FetchRetry(host)
		}
		delay := c.backoff(attempt)
		c.logger.Infof("retrying %s in %s (%d/%d): %v", target, delay, attempt, c.retryAttempts, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("giving up on %s after %d attempts: %w", target, c.retryAttempts, lastErr)
}

// GetJSON performs a GET and decodes the body as JSON into v, failing with a
// DecodeError when the body is not valid JSON.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, v interface{}) error {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: c.baseURL + path, Cause: err}
	}
	return nil
}

// GetDocument performs a GET and parses the body as an HTML document.
func (c *Client) GetDocument(ctx context.Context, path string) (*goquery.Document, error) {
	body, err := c.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, &DecodeError{URL: c.baseURL + path, Cause: err}
	}
	return doc, nil
}

func (c *Client) doOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body from %s: %w", target, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, &StatusError{StatusCode: resp.StatusCode, URL: target, Body: string(body)}
}

// retryable classifies an attempt failure: transport errors and 429 retry,
// everything else surfaces immediately.
func (c *Client) retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// backoff doubles the base delay each attempt with a little jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.retryDelay * time.Duration(1<<uint(attempt-1))
	var jitter time.Duration
	if half := int64(c.retryDelay / 2); half > 0 {
		jitter = time.Duration(rand.Int63n(half))
	}
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay + jitter
}

func (c *Client) resolve(path string, params url.Values) (string, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", target, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// record reports one attempt's outcome: "ok", the HTTP status code, or
// "transport" for connection-level failures.
func (c *Client) record(host string, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "transport"
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			status = fmt.Sprintf("%d", statusErr.StatusCode)
		}
	}
	c.metrics.FetchRequest(host, status)
}

func requestHost(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
