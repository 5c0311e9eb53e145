// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apiclient is the HTTP transport shared by every call to the remote
Account and Question services.

Responsibilities:

  - Request side: base URL resolution, JSON encoding, Authorization: Bearer
    injection from the Persisted Session Record, X-Request-ID propagation and
    client-side rate limiting.
  - Response side (the interceptor): every failure is converted into an
    [apperr.AppError] and reported to the [notify.Notifier] exactly once.
    A 401 additionally fires the unauthorized hook, which clears the session.

Callers never notify transport failures themselves.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/askly/internal/platform/apperr"
	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/platform/ctxutil"
	"github.com/taibuivan/askly/internal/platform/notify"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// TokenSource yields the bearer token to attach, or "" for anonymous calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures a [Client].
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// HTTPClient overrides the default client; its Timeout is left as provided.
	HTTPClient *http.Client
}

// Client performs JSON calls against the remote backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	notifier   notify.Notifier
	logger     *slog.Logger

	hookMu         sync.RWMutex
	onUnauthorized func(ctx context.Context)
}

// New builds a [Client]. tokens may be nil for anonymous use.
func New(opts Options, tokens TokenSource, notifier notify.Notifier, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultAPITimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit, burst := rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst
	if opts.RateLimitRPS <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = constants.DefaultAPIRateLimitBurst
	}

	if notifier == nil {
		notifier = notify.Discard
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		tokens:     tokens,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// OnUnauthorized registers the hook fired after a 401 response.
func (c *Client) OnUnauthorized(hook func(ctx context.Context)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onUnauthorized = hook
}

// # Call Options

// CallOption tweaks a single call.
type CallOption func(*callConfig)

type callConfig struct {
	quiet map[int]bool
}

// Quiet suppresses the notification for the given response statuses. The
// error is still returned so the caller can substitute a result.
func Quiet(statuses ...int) CallOption {
	return func(cfg *callConfig) {
		for _, status := range statuses {
			cfg.quiet[status] = true
		}
	}
}

// # Verbs

// Get issues a GET with optional query parameters and decodes the reply into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out, opts...)
}

// Post issues a POST with a JSON body and decodes the reply into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out, opts...)
}

// Do performs a request. out may be nil when the reply body is not needed.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any, opts ...CallOption) error {
	cfg := &callConfig{quiet: make(map[int]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	request, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}

	startTime := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		// The caller gave up; there is nothing to tell the user.
		if ctx.Err() != nil {
			return fmt.Errorf("apiclient: %s %s: %w", method, path, ctx.Err())
		}
		return c.fail(ctx, cfg, apperr.Network(msgNetwork, err))
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxBodySize))
	if err != nil {
		return c.fail(ctx, cfg, apperr.Network(msgNetwork, err))
	}

	c.logger.DebugContext(ctx, "api_call_finished",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	if response.StatusCode >= http.StatusBadRequest {
		return c.fail(ctx, cfg, classify(response.StatusCode, payload))
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		failure := apperr.Remote(response.StatusCode, msgGeneric)
		failure.Cause = fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
		return c.fail(ctx, cfg, failure)
	}

	return nil
}

// newRequest builds the outgoing request with the shared headers.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}

	request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	request.Header.Set("Accept", constants.ContentTypeJSON)

	requestID := ctxutil.GetRequestID(ctx)
	if requestID == "" {
		if id, err := uuid.NewV7(); err == nil {
			requestID = id.String()
		}
	}
	request.Header.Set(constants.HeaderXRequestID, requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("apiclient: read token: %w", err)
		}
		if token != "" {
			request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
		}
	}

	return request, nil
}

// fail reports failure unless its status is quiet, fires the 401 hook, and returns it.
func (c *Client) fail(ctx context.Context, cfg *callConfig, failure *apperr.AppError) error {
	if !cfg.quiet[failure.HTTPStatus] {
		notify.Error(ctx, c.notifier, failure.Message)
	}

	c.logger.WarnContext(ctx, "api_call_failed",
		slog.String("code", failure.Code),
		slog.Int("status", failure.HTTPStatus),
		slog.Any("cause", failure.Cause),
	)

	if failure.Code == apperr.CodeUnauthorized {
		c.hookMu.RLock()
		hook := c.onUnauthorized
		c.hookMu.RUnlock()

		if hook != nil {
			hook(ctx)
		}
	}

	return failure
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return apperr.HasCode(err, apperr.CodeNotFound)
}
