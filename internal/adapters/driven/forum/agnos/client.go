package agnos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/retry"
)

// Ensure Client implements the interface.
var _ driven.ForumClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://www.agnoshealth.com"
	DefaultTimeout    = 30 * time.Second
	DefaultFetchDelay = time.Second
	DefaultRetries    = 3
	DefaultMaxPages   = 10
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Config holds configuration for the forum client.
type Config struct {
	// BaseURL is the forum site root (default: https://www.agnoshealth.com).
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// FetchDelay is the minimum spacing between requests (default: 1s).
	// Zero disables pacing.
	FetchDelay time.Duration

	// Retries is the fetch attempt budget per page (default: 3).
	Retries int

	// MaxPages caps how many listing pages are walked (default: 10).
	MaxPages int

	// UserAgent overrides the browser identification header.
	UserAgent string
}

// Client fetches and parses forum pages over plain HTTP.
type Client struct {
	client    *http.Client
	baseURL   *url.URL
	limiter   *rate.Limiter
	policy    retry.Policy
	maxPages  int
	userAgent string
}

// NewClient creates a forum client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid forum base URL %q", domain.ErrConfiguration, cfg.BaseURL)
	}

	limit := rate.Inf
	if cfg.FetchDelay > 0 {
		limit = rate.Every(cfg.FetchDelay)
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   base,
		limiter:   rate.NewLimiter(limit, 1),
		policy:    retry.NewPolicy(cfg.Retries),
		maxPages:  cfg.MaxPages,
		userAgent: cfg.UserAgent,
	}, nil
}

// get fetches one URL with pacing and bounded retry. Client errors
// (4xx) are permanent; server errors and rate limiting are retried.
func (c *Client) get(ctx context.Context, pageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
		if err != nil {
			return retry.Permanent(fmt.Errorf("%w: create request: %v", domain.ErrFetchFailed, err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "th,en;q=0.9")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to read
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", domain.ErrRateLimited, pageURL)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d for %s", domain.ErrFetchFailed, resp.StatusCode, pageURL)
		default:
			return retry.Permanent(fmt.Errorf("%w: status %d for %s", domain.ErrFetchFailed, resp.StatusCode, pageURL))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: read body: %v", domain.ErrFetchFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// resolve joins a possibly relative href against the base URL.
func (c *Client) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.baseURL.ResolveReference(ref).String()
}

// Close releases resources.
func (c *Client) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
