package httpx

import (
	"context"
	crand "crypto/rand"
	"errors"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultMaxErrorBodyBytes int64 = 64 << 10

type RetryConfig struct {
	// MaxAttempts includes the initial attempt. If <= 1, retries are disabled.
	MaxAttempts int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// RespectRetryAfter uses the server's Retry-After as the backoff when present.
	RespectRetryAfter bool

	// MaxRetryAfter caps a server-provided Retry-After. If zero, no cap is applied.
	MaxRetryAfter time.Duration
}

func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    250 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		RespectRetryAfter: true,
		MaxRetryAfter:     30 * time.Second,
	}
}

func (c RetryConfig) backoff(attempt int) time.Duration {
	initial := c.InitialBackoff
	if initial <= 0 {
		initial = 250 * time.Millisecond
	}
	max := c.MaxBackoff
	if max <= 0 {
		max = 2 * time.Second
	}

	f := float64(initial) * math.Pow(2, float64(attempt-1))
	d := time.Duration(f)
	if d > max {
		d = max
	}
	return time.Duration(float64(d) * (1 + jitter(0.2)))
}

func jitter(maxFrac float64) float64 {
	if maxFrac <= 0 {
		return 0
	}
	n, err := crand.Int(crand.Reader, big.NewInt(1000))
	if err != nil {
		return 0
	}
	return (float64(n.Int64())/1000.0)*maxFrac - maxFrac/2
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	// Network and I/O errors are generally retryable.
	return true
}

func parseRetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
