package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestBackoff_GrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 500 * time.Millisecond}

	// Jitter is at most 20% in either direction.
	within := func(d, base time.Duration) bool {
		lo := time.Duration(float64(base) * 0.8)
		hi := time.Duration(float64(base) * 1.2)
		return d >= lo && d <= hi
	}

	if d := cfg.backoff(1); !within(d, 100*time.Millisecond) {
		t.Errorf("backoff(1) = %v", d)
	}
	if d := cfg.backoff(2); !within(d, 200*time.Millisecond) {
		t.Errorf("backoff(2) = %v", d)
	}
	if d := cfg.backoff(10); !within(d, 500*time.Millisecond) {
		t.Errorf("backoff(10) = %v, want capped near 500ms", d)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"rate limited", &StatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"request timeout", &StatusError{StatusCode: http.StatusRequestTimeout}, true},
		{"server error", &StatusError{StatusCode: http.StatusInternalServerError}, true},
		{"bad gateway", &StatusError{StatusCode: http.StatusBadGateway}, true},
		{"bad request", &StatusError{StatusCode: http.StatusBadRequest}, false},
		{"unauthorized", &StatusError{StatusCode: http.StatusUnauthorized}, false},
		{"not found", &StatusError{StatusCode: http.StatusNotFound}, false},
		{"network", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.err); got != tt.want {
				t.Errorf("shouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	h := http.Header{}
	if _, ok := parseRetryAfter(h, now); ok {
		t.Error("missing header should not parse")
	}

	h.Set("Retry-After", "30")
	if d, ok := parseRetryAfter(h, now); !ok || d != 30*time.Second {
		t.Errorf("seconds form = %v, %v", d, ok)
	}

	h.Set("Retry-After", now.Add(90*time.Second).Format(http.TimeFormat))
	if d, ok := parseRetryAfter(h, now); !ok || d != 90*time.Second {
		t.Errorf("date form = %v, %v", d, ok)
	}

	// A date in the past clamps to zero rather than going negative.
	h.Set("Retry-After", now.Add(-time.Minute).Format(http.TimeFormat))
	if d, ok := parseRetryAfter(h, now); !ok || d != 0 {
		t.Errorf("past date = %v, %v", d, ok)
	}

	h.Set("Retry-After", "garbage")
	if _, ok := parseRetryAfter(h, now); ok {
		t.Error("garbage should not parse")
	}
}
