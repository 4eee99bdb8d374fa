package httpx

import (
	"net"
	"net/http"
	"time"
)

// DefaultTransport returns a tuned clone of http.DefaultTransport.
//
// ResponseHeaderTimeout is deliberately generous: streaming completions can
// take a while to produce their first byte under load.
func DefaultTransport() *http.Transport {
	base, _ := http.DefaultTransport.(*http.Transport)
	if base == nil {
		return &http.Transport{}
	}
	t := base.Clone()

	t.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.TLSHandshakeTimeout = 5 * time.Second
	t.ExpectContinueTimeout = 1 * time.Second
	t.IdleConnTimeout = 90 * time.Second
	if t.MaxIdleConns == 0 {
		t.MaxIdleConns = 100
	}
	if t.MaxIdleConnsPerHost == 0 {
		t.MaxIdleConnsPerHost = 20
	}
	t.ForceAttemptHTTP2 = true
	return t
}
