// Package api is the HTTP client of the booking backend. It implements every
// collaborator interface of the service package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/api/wire"
	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Defaults for Options.
const (
	DefaultTimeout = 15 * time.Second
	DefaultRetries = 3
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4096

// Options configures a Client.
type Options struct {
	// HTTPClient is the base client the bearer transport wraps.
	HTTPClient *http.Client
	// Location is the zone appointment times are read in.
	Location *time.Location
	BaseURL  string
	Token    string
	Timeout  time.Duration
	// Retries is the number of attempts for reads.
	Retries int
}

// Client talks to the booking backend.
type Client struct {
	base  *url.URL
	http  *http.Client
	loc   *time.Location
	retry common.RetryOptions
}

// New creates a client for the backend at opts.BaseURL.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: api base url", common.ErrMissingConfig)
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: api base url %q", common.ErrInvalidConfig, opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	baseHTTP := opts.HTTPClient
	if baseHTTP == nil {
		baseHTTP = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	httpClient := &http.Client{Transport: baseHTTP.Transport}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseHTTP)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, src)
	}
	httpClient.Timeout = timeout

	return &Client{
		base: base,
		http: httpClient,
		loc:  loc,
		retry: common.RetryOptions{
			MaxAttempts:  retries,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
	}, nil
}

// get performs a GET with retries and decodes the JSON answer into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return common.WithRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, path, query, nil, out)
	}, c.retry)
}

// send performs a single write. Writes are never retried; creates carry an
// idempotency key so the backend can drop duplicates.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &common.RetryableError{Err: fmt.Errorf("%s %s: %w", method, path, err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("Backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body from %s", common.ErrInvalidResponse, path)
		}
		return fmt.Errorf("%w: %s: %w", common.ErrInvalidResponse, path, err)
	}
	return nil
}

// decodeError turns a non-2xx answer into an APIError. The body is either
// plain text or {"message": ...}.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(data))

	var body wire.Error
	if json.Unmarshal(data, &body) == nil {
		msg = strings.TrimSpace(body.Message)
	} else if strings.HasPrefix(msg, "<") {
		// HTML error pages from proxies are not worth showing.
		msg = ""
	}

	return &common.APIError{Status: resp.StatusCode, Message: msg}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
