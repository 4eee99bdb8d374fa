package httpx

import (
	"log/slog"
	"net/http"
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

func WithDefaultHeader(key, value string) Option {
	return func(c *Client) { c.defaultHeaders.Set(key, value) }
}

func WithMaxErrorBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxErrBody = n
		}
	}
}

// WithHooks adds hooks executed around every attempt.
func WithHooks(before []BeforeHook, after []AfterHook) Option {
	return func(c *Client) {
		c.before = append(c.before, before...)
		c.after = append(c.after, after...)
	}
}
