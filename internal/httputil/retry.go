// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the paced, retrying HTTP client shared by the
// search and download stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/synoptic/internal/logging"
	"github.com/pdiddy/synoptic/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 5 * time.Second

const (
	defaultMaxRetries = 5
	defaultTimeout    = 30 * time.Second
)

// Client sends requests paced by Limiter and retries rate-limited or
// failed attempts with exponential backoff.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int

	// Limiter, when set, is waited on before every attempt.
	Limiter *rate.Limiter

	Logger *zap.Logger
}

// NewClient builds a Client from cfg. A delay of zero or less leaves
// requests unpaced.
func NewClient(cfg types.HTTPConfig, delay time.Duration, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		HTTP:       &http.Client{Timeout: timeout},
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	}
	if delay > 0 {
		c.Limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return c
}

// Do executes req. HTTP 429, 5xx responses and transport errors are
// retried up to MaxRetries times (default 5); the delay starts at
// RetryBaseDelay and doubles each attempt. After exhausting retries the
// last response or error is returned so the caller can inspect it. If ctx
// is cancelled while waiting, Do returns ctx.Err().
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	log := logging.OrNop(c.Logger)

	for attempt := 0; ; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		r := req.Clone(ctx)
		if c.UserAgent != "" && r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", c.UserAgent)
		}

		resp, err := client.Do(r)
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= maxRetries {
			return resp, err
		}
		if ctx.Err() != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, ctx.Err()
		}

		reason := "request failed"
		if err == nil {
			reason = resp.Status
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		log.Warn("retrying request",
			zap.String("url", req.URL.Redacted()),
			zap.String("reason", reason),
			zap.Error(err),
			zap.Duration("backoff", backoff),
			zap.String("attempt", fmt.Sprintf("%d/%d", attempt+1, maxRetries)))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Get issues a GET for url with an optional Accept header.
func (c *Client) Get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.Do(ctx, req)
}
