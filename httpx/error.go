package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// StatusError is returned for non-2xx responses. The body has already been
// read (truncated to the configured cap) and the connection released.
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// RequestID is the correlation id echoed by the server, or the one we
	// injected when the server did not echo it.
	RequestID string

	// RetryAfter is parsed from the Retry-After header when present.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("http %d", e.StatusCode))
	if t := strings.TrimSpace(http.StatusText(e.StatusCode)); t != "" {
		b.WriteString(" ")
		b.WriteString(t)
	}
	if e.RequestID != "" {
		b.WriteString(" request_id=")
		b.WriteString(e.RequestID)
	}
	return b.String()
}

// AsStatusError extracts *StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
