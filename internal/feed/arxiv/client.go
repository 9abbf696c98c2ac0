// Package arxiv implements feed.Source over the arXiv Atom query API.
package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/dailypaper/internal/feed"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the arXiv API base URL.
	BaseURL = "https://export.arxiv.org/api"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestInterval follows arXiv's guidance of one request every three seconds.
	DefaultRequestInterval = 3 * time.Second

	// DefaultMaxRetries is the number of retries on 429, 5xx and network errors.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is used when the server sends no Retry-After header.
	DefaultRetryDelay = 3 * time.Second

	// MaxResultsCap is the largest page the API serves in one request.
	MaxResultsCap = 2000

	// maxBodySize bounds how much of a response is read (10MB).
	maxBodySize = 10 << 20

	sourceName = "arXiv"
	userAgent  = "dailypaper/1.0 (+https://github.com/matsen/dailypaper)"
)

// Client fetches category listings from arXiv. Requests are paced by a shared
// rate.Limiter and retried on transient failures.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

// Ensure Client implements feed.Source.
var _ feed.Source = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit sets the sustained request rate (requests per second) and burst.
// A non-positive rate disables pacing.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if burst < 1 {
			burst = 1
		}
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, burst)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetries sets the retry count and the fallback delay between attempts.
func WithRetries(maxRetries int, delay time.Duration) ClientOption {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// NewClient creates a new arXiv API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		baseURL:    BaseURL,
		userAgent:  userAgent,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the human-readable feed name.
func (c *Client) Name() string {
	return sourceName
}

// Fetch returns the most recent submissions listed under q.Category.
func (c *Client) Fetch(ctx context.Context, q feed.Query) ([]feed.Record, error) {
	if q.Category == "" {
		return nil, fmt.Errorf("%w: empty category", ErrAPIError)
	}

	reqURL, err := c.buildQueryURL(q)
	if err != nil {
		return nil, fmt.Errorf("building query URL: %w", err)
	}

	body, err := c.get(ctx, reqURL)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.Category = q.Category
		}
		return nil, err
	}
	defer body.Close()

	records, err := parseFeed(io.LimitReader(body, maxBodySize))
	if err != nil {
		return nil, err
	}

	if q.MaxResults > 0 && len(records) > q.MaxResults {
		records = records[:q.MaxResults]
	}
	return records, nil
}

// buildQueryURL constructs the category listing URL.
func (c *Client) buildQueryURL(q feed.Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/query"

	maxResults := q.MaxResults
	if maxResults <= 0 || maxResults > MaxResultsCap {
		maxResults = MaxResultsCap
	}

	query := url.Values{}
	query.Set("search_query", "cat:"+q.Category)
	query.Set("start", "0")
	query.Set("max_results", strconv.Itoa(maxResults))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	if q.Order != "" && q.Order != feed.MostRecentFirst {
		return "", fmt.Errorf("unsupported sort order %q", q.Order)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// get performs a paced GET with retries and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, reqURL string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.retryDelayFor(lastErr)); err != nil {
				return nil, err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/atom+xml")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrNetworkError, err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}

		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		resp.Body.Close()

		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		lastErr = &retryAfterError{err: apiErr, after: parseRetryAfter(resp.Header.Get("Retry-After"))}

		if !shouldRetry(resp.StatusCode) {
			return nil, apiErr
		}
	}

	var ra *retryAfterError
	if errors.As(lastErr, &ra) {
		if ra.err.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrRateLimited, c.maxRetries+1, ra.err)
		}
		return nil, ra.err
	}
	return nil, lastErr
}

// retryAfterError carries a server-requested delay alongside the API error.
type retryAfterError struct {
	err   *APIError
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

func (c *Client) retryDelayFor(err error) time.Duration {
	var ra *retryAfterError
	if errors.As(err, &ra) && ra.after > 0 {
		return ra.after
	}
	return c.retryDelay
}

// shouldRetry returns true on 429 and 5xx.
func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// parseRetryAfter accepts delta-seconds or an HTTP date. Returns 0 when absent or invalid.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return 0
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
