// Package apiclient is the authenticated HTTP wrapper every Veritas backend
// client is built on.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bilgisen/veritas/internal/config"
	"github.com/bilgisen/veritas/internal/logger"
	"github.com/bilgisen/veritas/internal/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

// TokenSource supplies the bearer token. An empty token means logged out.
type TokenSource interface {
	Token() string
	IsAuthenticated() bool
}

// AuthMode controls whether a call carries the bearer token.
type AuthMode int

const (
	// AuthNone never sends a token.
	AuthNone AuthMode = iota
	// AuthOptional sends the token when one is present.
	AuthOptional
	// AuthRequired fails with ErrNeedsAuth before any request when no token is present.
	AuthRequired
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RateLimit  float64 // requests per second, 0 disables limiting
	RateBurst  int
	UserAgent  string
	Metrics    metrics.Recorder
}

// Client issues JSON requests against the backend.
type Client struct {
	http    *resty.Client
	tokens  TokenSource
	limiter *rate.Limiter
	timeout time.Duration
	metrics metrics.Recorder
	log     zerolog.Logger
}

// Call describes one request.
type Call struct {
	Method string
	Path   string
	// Route is the metrics label; defaults to Path. Use it to keep ids out of labels.
	Route  string
	Query  url.Values
	Body   interface{}
	Auth   AuthMode
	Result interface{}
}

// New creates a Client.
func New(opts Options, tokens TokenSource) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "veritas-client/1.0"
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
			SetTimeout(opts.Timeout).
			SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(3 * time.Second).
			SetHeader("User-Agent", opts.UserAgent),
		tokens:  tokens,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		log:     logger.Component("apiclient"),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// NewFromConfig creates a Client from the application configuration.
func NewFromConfig(cfg *config.Config, tokens TokenSource, rec metrics.Recorder) *Client {
	return New(Options{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.HTTPTimeout,
		RetryCount: cfg.HTTPRetryCount,
		RateLimit:  cfg.HTTPRateLimit,
		RateBurst:  cfg.HTTPRateBurst,
		Metrics:    rec,
	}, tokens)
}

// Authenticated reports whether a token is currently available.
func (c *Client) Authenticated() bool {
	return c.tokens != nil && c.tokens.IsAuthenticated()
}

// Do executes call and returns the response status code. Non-2xx responses
// come back as *StatusError; a 2xx body is decoded into call.Result when set.
func (c *Client) Do(ctx context.Context, call Call) (int, error) {
	route := call.Route
	if route == "" {
		route = call.Path
	}

	var token string
	if call.Auth != AuthNone && c.tokens != nil {
		token = c.tokens.Token()
	}
	if call.Auth == AuthRequired && token == "" {
		return 0, ErrNeedsAuth
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("%s %s: %w", call.Method, call.Path, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", requestID)
	if token != "" {
		req.SetAuthToken(token)
	}
	if len(call.Query) > 0 {
		req.SetQueryParamsFromValues(call.Query)
	}
	if call.Body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(call.Body)
	}

	start := time.Now()
	resp, err := req.Execute(call.Method, call.Path)
	latency := time.Since(start)

	if err != nil {
		c.metrics.RecordRequest(call.Method, route, 0, latency)
		c.log.Debug().
			Err(err).
			Str("method", call.Method).
			Str("path", call.Path).
			Str("request_id", requestID).
			Msg("request failed")
		return 0, fmt.Errorf("%s %s: %w", call.Method, call.Path, err)
	}

	status := resp.StatusCode()
	c.metrics.RecordRequest(call.Method, route, status, latency)
	c.log.Debug().
		Str("method", call.Method).
		Str("path", call.Path).
		Int("status", status).
		Dur("latency", latency).
		Str("request_id", requestID).
		Msg("request")

	if status < 200 || status > 299 {
		return status, &StatusError{
			Method:     call.Method,
			Path:       call.Path,
			StatusCode: status,
			Body:       clip(strings.TrimSpace(resp.String()), maxErrorBody),
		}
	}

	if call.Result != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), call.Result); err != nil {
			return status, fmt.Errorf("failed to decode %s %s response: %w", call.Method, call.Path, err)
		}
	}
	return status, nil
}

// clip shortens s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
