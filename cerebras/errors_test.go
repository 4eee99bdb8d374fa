package cerebras

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nikothomas/cerebras-go/httpx"
)

func statusErr(code int, body string) *httpx.StatusError {
	return &httpx.StatusError{StatusCode: code, Body: []byte(body)}
}

func TestClassify_StatusCodes(t *testing.T) {
	tests := []struct {
		status    int
		wantKind  ErrorKind
		retryable bool
	}{
		{http.StatusUnauthorized, ErrKindAuth, false},
		{http.StatusForbidden, ErrKindAuth, false},
		{http.StatusTooManyRequests, ErrKindRateLimit, true},
		{http.StatusBadRequest, ErrKindBadRequest, false},
		{http.StatusUnprocessableEntity, ErrKindBadRequest, false},
		{http.StatusNotFound, ErrKindNotFound, false},
		{http.StatusRequestTimeout, ErrKindTimeout, true},
		{http.StatusInternalServerError, ErrKindServer, true},
		{http.StatusServiceUnavailable, ErrKindServer, true},
	}

	for _, tt := range tests {
		err := classify(statusErr(tt.status, ""), nil)
		e, ok := AsError(err)
		if !ok {
			t.Fatalf("status %d: classify returned %T", tt.status, err)
		}
		if e.Kind != tt.wantKind {
			t.Errorf("status %d: kind = %q, want %q", tt.status, e.Kind, tt.wantKind)
		}
		if e.Retryable != tt.retryable {
			t.Errorf("status %d: retryable = %v, want %v", tt.status, e.Retryable, tt.retryable)
		}
		if e.HTTPStatus != tt.status {
			t.Errorf("status %d: HTTPStatus = %d", tt.status, e.HTTPStatus)
		}
	}
}

func TestClassify_ParsesErrorEnvelope(t *testing.T) {
	body := `{"error":{"message":"model not found","type":"invalid_request_error","param":"model","code":"model_not_found"}}`
	err := classify(statusErr(http.StatusNotFound, body), nil)

	e, ok := AsError(err)
	if !ok {
		t.Fatalf("classify returned %T", err)
	}
	if e.Message != "model not found" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Type != "invalid_request_error" || e.Param != "model" || e.Code != "model_not_found" {
		t.Errorf("type/param/code = %q/%q/%q", e.Type, e.Param, e.Code)
	}
}

func TestClassify_NumericCode(t *testing.T) {
	body := `{"error":{"message":"too fast","code":429}}`
	err := classify(statusErr(http.StatusTooManyRequests, body), nil)

	e, _ := AsError(err)
	if e.Code != "429" {
		t.Errorf("Code = %q, want 429", e.Code)
	}
}

func TestClassify_RetryAfter(t *testing.T) {
	se := statusErr(http.StatusTooManyRequests, "")
	se.RetryAfter = 5 * time.Second

	err := classify(se, nil)
	e, _ := AsError(err)
	if e.RetryAfter != 5*time.Second {
		t.Errorf("RetryAfter = %v, want 5s", e.RetryAfter)
	}
	if !IsRateLimit(err) {
		t.Error("IsRateLimit() = false")
	}
}

func TestClassify_ContextErrors(t *testing.T) {
	if e, _ := AsError(classify(context.Canceled, nil)); e.Kind != ErrKindCanceled {
		t.Errorf("canceled kind = %q", e.Kind)
	}
	e, _ := AsError(classify(context.DeadlineExceeded, nil))
	if e.Kind != ErrKindTimeout {
		t.Errorf("deadline kind = %q", e.Kind)
	}
	if !e.Retryable {
		t.Error("deadline should be retryable")
	}
}

func TestClassify_PassesThroughExisting(t *testing.T) {
	orig := &Error{Kind: ErrKindDecode, Message: "bad frame"}
	if got := classify(orig, nil); got != error(orig) {
		t.Errorf("classify rewrapped an already-classified error: %v", got)
	}
}

func TestClassify_UnknownTransport(t *testing.T) {
	e, _ := AsError(classify(errors.New("connection reset"), nil))
	if e.Kind != ErrKindTransport || !e.Retryable {
		t.Errorf("kind/retryable = %q/%v", e.Kind, e.Retryable)
	}
}

func TestError_String(t *testing.T) {
	e := &Error{
		Kind:       ErrKindRateLimit,
		HTTPStatus: 429,
		Message:    "slow down",
		Code:       "rate_limited",
		RequestID:  "req-123",
	}
	got := e.Error()
	for _, part := range []string{"cerebras:", "rate_limit", "http 429", "slow down", "(rate_limited)", "request_id=req-123"} {
		if !strings.Contains(got, part) {
			t.Errorf("Error() = %q, missing %q", got, part)
		}
	}
}

func TestError_StatusTextFallback(t *testing.T) {
	e := &Error{Kind: ErrKindServer, HTTPStatus: 503}
	if !strings.Contains(e.Error(), "Service Unavailable") {
		t.Errorf("Error() = %q, want status text fallback", e.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := &Error{Kind: ErrKindTransport, Cause: cause}
	if !errors.Is(e, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestErrorPredicates(t *testing.T) {
	if !IsAuth(&Error{Kind: ErrKindAuth}) {
		t.Error("IsAuth() = false")
	}
	if IsAuth(errors.New("plain")) {
		t.Error("IsAuth(plain error) = true")
	}
	if !IsRetryable(&Error{Kind: ErrKindServer, Retryable: true}) {
		t.Error("IsRetryable() = false")
	}
}
