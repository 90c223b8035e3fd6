// Package crossref looks up bibliographic records by DOI in the Crossref
// REST API.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/shelf/internal/reference"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit stays under the limit Crossref grants anonymous clients.
	RateLimit = 5.0

	// EnvMailto names the contact address sent to Crossref's polite pool.
	EnvMailto = "CROSSREF_MAILTO"
)

// Client is a rate-limited HTTP client for the Crossref works endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	userAgent  string
}

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
		c.baseURL = u
	}
}

// WithMailto sets the contact address sent with each request.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Crossref client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		userAgent:  "shelf",
	}

	if addr := os.Getenv(EnvMailto); addr != "" {
		c.mailto = addr
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// LookupDOI fetches the work registered under doi and converts it to a
// record. Requests are not retried.
func (c *Client) LookupDOI(ctx context.Context, doi string) (reference.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return reference.Record{}, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + "/works/" + escapeDOI(doi)
	if c.mailto != "" {
		endpoint += "?mailto=" + url.QueryEscape(c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return reference.Record{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	ua := c.userAgent
	if c.mailto != "" {
		ua += " (mailto:" + c.mailto + ")"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return reference.Record{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, doi); err != nil {
		return reference.Record{}, err
	}

	var body worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return reference.Record{}, fmt.Errorf("%w: decoding reply: %v", ErrNoMatch, err)
	}
	if body.Status != "ok" || body.Message == nil {
		return reference.Record{}, ErrNoMatch
	}

	return body.Message.toRecord(doi)
}

// escapeDOI escapes each path segment of a DOI, keeping its slashes.
func escapeDOI(doi string) string {
	segments := strings.Split(doi, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
