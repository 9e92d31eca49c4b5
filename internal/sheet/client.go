package sheet

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "centerhub/internal/errors"
)

// maxBodySize caps the export download. Real center sheets are a few hundred KB.
const maxBodySize = 32 << 20

// Client downloads CSV exports over a pooled HTTP client.
//
// Thread-safety:
//   - http.Client is safe for concurrent use by multiple goroutines
//   - Client holds no other mutable state
type Client struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
	maxBody    int64
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another document root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithMaxBodySize caps how many bytes one export may have.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

// WithClock sets the time source used for the cache-busting parameter.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a sheet client with connection pooling.
func NewClient(timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: NewHTTPClient(timeout),
		baseURL:    DefaultBaseURL,
		now:        time.Now,
		maxBody:    maxBodySize,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// NewHTTPClient creates an HTTP client with connection pooling.
//
// A zero timeout leaves the transport default in place, which means no
// overall deadline; callers then rely on their context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// ExportURL returns the export endpoint for id without the cache-busting parameter.
func (c *Client) ExportURL(id string) string {
	return ExportURL(c.baseURL, id)
}

// EditURL returns the sharing link for id.
func (c *Client) EditURL(id string) string {
	return EditURL(c.baseURL, id)
}

// Fetch downloads the CSV export of spreadsheet id.
//
// Every call carries cache_bust=<unix millis> so intermediaries never serve a
// stale export. Transport failures and non-2xx answers come back as
// *errors.FetchError.
func (c *Client) Fetch(ctx context.Context, id string) (string, error) {
	u := c.ExportURL(id) + "&cache_bust=" + strconv.FormatInt(c.now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", apperrors.NewFetchError("failed to create request", err)
	}
	req.Header.Set("Accept", "text/csv")

	c.logger.Debug("  → Downloading sheet export", zap.String("url", u))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewFetchError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", apperrors.NewStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return "", apperrors.NewFetchError("failed to read response", err)
	}
	if int64(len(body)) > c.maxBody {
		return "", apperrors.NewFetchError("export exceeds "+strconv.FormatInt(c.maxBody, 10)+" bytes", nil)
	}

	c.logger.Debug("  ✓ Sheet export downloaded", zap.Int("bytes", len(body)))
	return string(body), nil
}
