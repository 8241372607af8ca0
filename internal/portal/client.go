// Package portal talks to the procurement portal's JSON endpoints: the
// category tree, the paginated category listings, and the per-article
// detail view. It owns the transport error taxonomy; retry policy is the
// caller's concern and none exists here.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const bodyPrefixLen = 200

// Options configures a portal Client.
type Options struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration // tree and detail requests
	ListingTimeout time.Duration // listing pages carry larger payloads
	RateLimit      rate.Limit    // outbound ceiling, requests per second
	Burst          int
}

// Client issues requests against the portal with a fixed header set and
// a per-call timeout. A token-bucket ceiling caps the outbound rate; the
// crawl's pacing between pages and details is separate fixed sleeps
// owned by the crawler.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// NewClient creates a portal client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.ListingTimeout == 0 {
		opts.ListingTimeout = 20 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "procurement-cli/1.0"
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 5
	}
	if opts.Burst == 0 {
		opts.Burst = 5
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{Transport: transport},
		opts:       opts,
		limiter:    rate.NewLimiter(opts.RateLimit, opts.Burst),
	}
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
}

// getJSON issues a GET with query parameters and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, timeout time.Duration, out any) error {
	u := c.opts.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil, timeout, out)
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body any, timeout time.Duration, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &DecodeError{Err: err}
	}
	return c.do(ctx, http.MethodPost, c.opts.BaseURL+path, payload, timeout, out)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return transportErr(err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return &TransportError{Kind: KindRequestFailure, Err: err}
	}
	c.headers(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportErr(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErr(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{
			Kind:       KindHTTPStatus,
			Status:     resp.StatusCode,
			BodyPrefix: prefix(raw),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{BodyPrefix: prefix(raw), Err: err}
	}
	return nil
}

func transportErr(err error) *TransportError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &TransportError{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &TransportError{Kind: KindTimeout, Err: err}
	default:
		return &TransportError{Kind: KindRequestFailure, Err: err}
	}
}

func prefix(raw []byte) string {
	if len(raw) > bodyPrefixLen {
		raw = raw[:bodyPrefixLen]
	}
	return string(raw)
}

// envelope is the portal's common response wrapper.
type envelope struct {
	Success *bool            `json:"success"`
	Error   *envelopeError   `json:"error"`
	Result  *json.RawMessage `json:"result"`
}

type envelopeError struct {
	Message string `json:"message"`
}

// appError converts an unsuccessful envelope into an ApplicationError.
// Envelopes with no success flag at all (the tree endpoint) pass.
func (e *envelope) appError() error {
	if e.Success == nil || *e.Success {
		return nil
	}
	msg := "unknown upstream error"
	if e.Error != nil && e.Error.Message != "" {
		msg = e.Error.Message
	}
	return &ApplicationError{Message: msg}
}
