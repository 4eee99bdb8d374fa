package cerebras

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestSSEDecoder_SingleFrame(t *testing.T) {
	d := newSSEDecoder(strings.NewReader("data: {\"x\":1}\n\n"))

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got := string(frame.data); got != `{"x":1}` {
		t.Errorf("data = %q, want %q", got, `{"x":1}`)
	}

	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last frame = %v, want io.EOF", err)
	}
}

func TestSSEDecoder_MultipleDataLinesJoined(t *testing.T) {
	d := newSSEDecoder(strings.NewReader("data: line one\ndata: line two\n\n"))

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got := string(frame.data); got != "line one\nline two" {
		t.Errorf("data = %q, want lines joined with newline", got)
	}
}

func TestSSEDecoder_EventTag(t *testing.T) {
	d := newSSEDecoder(strings.NewReader("event: message\ndata: hello\n\n"))

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if frame.event != "message" {
		t.Errorf("event = %q, want message", frame.event)
	}
	if string(frame.data) != "hello" {
		t.Errorf("data = %q, want hello", frame.data)
	}
}

func TestSSEDecoder_SkipsCommentsAndUnknownFields(t *testing.T) {
	input := ": keep-alive\n" +
		"id: 42\n" +
		"retry: 1000\n" +
		"data: payload\n" +
		"\n"
	d := newSSEDecoder(strings.NewReader(input))

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if string(frame.data) != "payload" {
		t.Errorf("data = %q, want payload", frame.data)
	}
}

func TestSSEDecoder_CRLF(t *testing.T) {
	d := newSSEDecoder(strings.NewReader("data: a\r\ndata: b\r\n\r\n"))

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got := string(frame.data); got != "a\nb" {
		t.Errorf("data = %q, want %q", got, "a\nb")
	}
}

// Frames must come out identical no matter how the transport slices the
// byte stream.
func TestSSEDecoder_ChunkBoundaryInvariance(t *testing.T) {
	input := "data: first\n\ndata: sec\ndata: ond\n\n"

	whole := newSSEDecoder(strings.NewReader(input))
	byteAtATime := newSSEDecoder(iotest.OneByteReader(strings.NewReader(input)))

	for i := 0; ; i++ {
		a, errA := whole.Next()
		b, errB := byteAtATime.Next()
		if (errA == nil) != (errB == nil) {
			t.Fatalf("frame %d: errors diverge: %v vs %v", i, errA, errB)
		}
		if errA != nil {
			break
		}
		if string(a.data) != string(b.data) {
			t.Errorf("frame %d: %q vs %q", i, a.data, b.data)
		}
	}
}

func TestSSEDecoder_PartialTrailingFrameDiscarded(t *testing.T) {
	// No terminating blank line: the data line never became a frame.
	d := newSSEDecoder(strings.NewReader("data: complete\n\ndata: trunca"))

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if string(frame.data) != "complete" {
		t.Errorf("data = %q, want complete", frame.data)
	}

	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() = %v, want io.EOF with partial frame dropped", err)
	}
}

func TestSSEDecoder_EmptyStream(t *testing.T) {
	d := newSSEDecoder(strings.NewReader(""))
	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() = %v, want io.EOF", err)
	}
}
