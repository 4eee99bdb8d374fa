package httpx

import (
	"net/http"
	"time"
)

// BeforeHook runs before each attempt; returning an error aborts the request.
type BeforeHook func(req *http.Request, attempt int) error

// AfterHook observes the outcome of each attempt.
type AfterHook func(req *http.Request, resp *http.Response, err error, dur time.Duration, attempt int)

// RoundTripperFunc adapts a function to an http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
