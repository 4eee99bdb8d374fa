package httpx

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const requestIDHeader = "X-Request-Id"

// Client issues HTTP requests against a single base URL.
//
// DoJSON buffers the whole response and retries per the configured policy.
// DoStream returns the live response body and never retries: once bytes
// have been handed to the caller the request is not replayable.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL

	defaultHeaders http.Header
	userAgent      string
	logger         *slog.Logger
	retry          RetryConfig
	maxErrBody     int64

	before []BeforeHook
	after  []AfterHook
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: baseURL, Err: errors.New("base url must be absolute")}
	}

	// No overall client timeout: it would bound the entire body read and
	// cut off long-lived streams. Callers bound requests with contexts.
	c := &Client{
		httpClient:     &http.Client{Transport: DefaultTransport()},
		baseURL:        u,
		defaultHeaders: make(http.Header),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		retry:          DefaultRetry(),
		maxErrBody:     DefaultMaxErrorBodyBytes,
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c, nil
}

// Resolve joins path onto the base URL, preserving any base path prefix.
func (c *Client) Resolve(path string) string {
	u := *c.baseURL
	u.Path = joinPath(u.Path, path)
	return u.String()
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a[len(a)-1] == '/' {
		if b[0] == '/' {
			return a + b[1:]
		}
		return a + b
	}
	if b[0] == '/' {
		return a + b
	}
	return a + "/" + b
}

// DoJSON sends a JSON request, buffers the response body, and returns it.
// Non-2xx responses come back as a *StatusError. Retryable failures are
// retried up to the configured attempt budget; the JSON body is replayed
// from the marshaled bytes on each attempt.
func (c *Client) DoJSON(ctx context.Context, method, path string, hdr http.Header, body any) ([]byte, error) {
	var bodyBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyBytes = b
	}

	attempts := c.retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var raw []byte
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		raw, err = c.doOnce(ctx, method, path, hdr, bodyBytes, attempt)
		if err == nil {
			return raw, nil
		}
		if attempt == attempts || !shouldRetry(err) {
			return nil, err
		}

		wait := c.retry.backoff(attempt)
		var se *StatusError
		if c.retry.RespectRetryAfter && errors.As(err, &se) && se.RetryAfter > 0 {
			wait = se.RetryAfter
			if c.retry.MaxRetryAfter > 0 && wait > c.retry.MaxRetryAfter {
				wait = c.retry.MaxRetryAfter
			}
		}
		c.logger.Debug("httpx retry", "attempt", attempt, "sleep", wait, "err", err)
		if serr := sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

// DoStream sends the request and returns the response with its body still
// open. The caller owns the body and must close it exactly once. Non-2xx
// responses are drained (up to the error body cap) and returned as a
// *StatusError; the body is closed in that case.
func (c *Client) DoStream(ctx context.Context, method, path string, hdr http.Header, body any) (*http.Response, error) {
	var bodyBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyBytes = b
	}

	req, err := c.newRequest(ctx, method, path, hdr, bodyBytes)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	c.runAfter(req, resp, err, time.Since(t0), 1)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, c.maxErrBody))
	return nil, c.statusError(req, resp, raw)
}

func (c *Client) doOnce(ctx context.Context, method, path string, hdr http.Header, bodyBytes []byte, attempt int) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, hdr, bodyBytes)
	if err != nil {
		return nil, err
	}
	for _, h := range c.before {
		if h == nil {
			continue
		}
		if err := h(req, attempt); err != nil {
			return nil, err
		}
	}

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	dur := time.Since(t0)
	c.runAfter(req, resp, err, dur, attempt)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	if int64(len(raw)) > c.maxErrBody {
		raw = raw[:c.maxErrBody]
	}
	return nil, c.statusError(req, resp, raw)
}

func (c *Client) newRequest(ctx context.Context, method, path string, hdr http.Header, bodyBytes []byte) (*http.Request, error) {
	var body io.Reader
	if bodyBytes != nil {
		body = bytes.NewReader(bodyBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(path), body)
	if err != nil {
		return nil, err
	}
	mergeHeaders(req.Header, c.defaultHeaders)
	mergeHeaders(req.Header, hdr)
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, randomID())
	}
	// POST retries are safe because every attempt carries the same key.
	if method == http.MethodPost && req.Header.Get("Idempotency-Key") == "" {
		req.Header.Set("Idempotency-Key", req.Header.Get(requestIDHeader))
	}
	return req, nil
}

func (c *Client) statusError(req *http.Request, resp *http.Response, raw []byte) *StatusError {
	rid := strings.TrimSpace(resp.Header.Get(requestIDHeader))
	if rid == "" {
		rid = strings.TrimSpace(req.Header.Get(requestIDHeader))
	}
	ra, _ := parseRetryAfter(resp.Header, time.Now())
	return &StatusError{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       raw,
		RequestID:  rid,
		RetryAfter: ra,
	}
}

func (c *Client) runAfter(req *http.Request, resp *http.Response, err error, dur time.Duration, attempt int) {
	for _, h := range c.after {
		if h != nil {
			h(req, resp, err, dur, attempt)
		}
	}
}

func mergeHeaders(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
