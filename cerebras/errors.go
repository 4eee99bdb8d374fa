package cerebras

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nikothomas/cerebras-go/httpx"
)

type ErrorKind string

const (
	ErrKindAuth             ErrorKind = "auth"
	ErrKindRateLimit        ErrorKind = "rate_limit"
	ErrKindBadRequest       ErrorKind = "bad_request"
	ErrKindNotFound         ErrorKind = "not_found"
	ErrKindServer           ErrorKind = "server"
	ErrKindTimeout          ErrorKind = "timeout"
	ErrKindCanceled         ErrorKind = "canceled"
	ErrKindTransport        ErrorKind = "transport"
	ErrKindDecode           ErrorKind = "decode"
	ErrKindIncompleteStream ErrorKind = "incomplete_stream"
)

// Error is the single error type returned by the SDK.
//
// Kind is a stable classification; Retryable and RetryAfter carry the hints
// a caller needs to implement retry policy. Raw holds the offending payload
// (HTTP error body or undecodable stream frame) for diagnostics.
type Error struct {
	Kind ErrorKind

	// HTTPStatus is 0 when the failure happened before a response arrived.
	HTTPStatus int

	// Code/Type/Param are the service-reported error details, when present.
	Code  string
	Type  string
	Param string

	Message string

	// RequestID is the correlation id of the failed request, when known.
	RequestID string

	// RetryAfter is the server's suggested wait before retrying (429/503).
	RetryAfter time.Duration

	Retryable bool

	Raw []byte

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("cerebras: ")
	b.WriteString(string(e.Kind))
	if e.HTTPStatus != 0 {
		b.WriteString(fmt.Sprintf(" (http %d)", e.HTTPStatus))
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.HTTPStatus != 0 {
		msg = http.StatusText(e.HTTPStatus)
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if strings.TrimSpace(e.Code) != "" {
		b.WriteString(" (")
		b.WriteString(strings.TrimSpace(e.Code))
		b.WriteString(")")
	}
	if strings.TrimSpace(e.RequestID) != "" {
		b.WriteString(" request_id=")
		b.WriteString(strings.TrimSpace(e.RequestID))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsRateLimit(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == ErrKindRateLimit
}

func IsAuth(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == ErrKindAuth
}

func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}

// errorEnvelope is the JSON error body the API returns for non-2xx statuses.
type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
		Param   string `json:"param"`
	} `json:"error"`
}

// classify maps a transport-layer failure into the closed taxonomy.
// Classification happens exactly once, here, at the boundary nearest the
// failure; callers never re-inspect status codes.
func classify(err error, raw []byte) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrKindCanceled, Message: "request canceled", Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrKindTimeout, Message: "request deadline exceeded", Retryable: true, Cause: err}
	}

	var se *httpx.StatusError
	if errors.As(err, &se) {
		kind, retryable := classifyStatus(se.StatusCode)
		out := &Error{
			Kind:       kind,
			HTTPStatus: se.StatusCode,
			RequestID:  se.RequestID,
			RetryAfter: se.RetryAfter,
			Retryable:  retryable,
			Raw:        append([]byte(nil), se.Body...),
			Cause:      err,
		}
		var env errorEnvelope
		if jerr := json.Unmarshal(se.Body, &env); jerr == nil && env.Error != nil {
			out.Message = env.Error.Message
			out.Type = env.Error.Type
			out.Param = env.Error.Param
			out.Code = stringifyCode(env.Error.Code)
		}
		return out
	}

	return &Error{Kind: ErrKindTransport, Message: err.Error(), Retryable: true, Raw: raw, Cause: err}
}

func classifyStatus(status int) (ErrorKind, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrKindAuth, false
	case http.StatusTooManyRequests:
		return ErrKindRateLimit, true
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrKindBadRequest, false
	case http.StatusNotFound:
		return ErrKindNotFound, false
	case http.StatusRequestTimeout:
		return ErrKindTimeout, true
	default:
		if status >= 500 {
			return ErrKindServer, true
		}
		return ErrKindBadRequest, false
	}
}

func stringifyCode(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
