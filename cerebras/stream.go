package cerebras

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// DecodePolicy controls what a stream does with a frame whose payload
// cannot be decoded as a chunk.
type DecodePolicy int

const (
	// DecodeAbort surfaces the failure and terminates the stream.
	DecodeAbort DecodePolicy = iota
	// DecodeSkip drops the offending frame and keeps reading. Use this
	// against servers that interleave non-chunk informational frames.
	DecodeSkip
)

var ErrStreamClosed = errors.New("cerebras: stream closed")

var doneSentinel = []byte("[DONE]")

// rawStream owns the response body and yields frame payloads until the
// `[DONE]` sentinel. It is the stage shared by both stream types: framing,
// sentinel detection and resource release live here, chunk decoding in the
// typed wrappers.
type rawStream struct {
	resp *http.Response
	dec  *sseDecoder

	closed bool
	done   bool
}

func newRawStream(resp *http.Response) rawStream {
	return rawStream{resp: resp, dec: newSSEDecoder(resp.Body)}
}

// next returns the next non-sentinel payload. After `[DONE]` it returns
// io.EOF. A body that ends without the sentinel is not a clean completion:
// the caller cannot know whether the final chunk was the last one, so it
// surfaces as ErrKindIncompleteStream and any partial aggregate must be
// thrown away.
func (s *rawStream) next() ([]byte, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.done {
		return nil, io.EOF
	}
	for {
		frame, err := s.dec.Next()
		if err != nil {
			s.done = true
			if errors.Is(err, io.EOF) {
				return nil, &Error{
					Kind:      ErrKindIncompleteStream,
					Message:   "stream ended before [DONE]",
					Retryable: true,
				}
			}
			return nil, &Error{Kind: ErrKindTransport, Message: "stream read failed", Retryable: true, Cause: err}
		}

		data := bytes.TrimSpace(frame.data)
		if len(data) == 0 {
			continue
		}
		if bytes.Equal(data, doneSentinel) {
			s.done = true
			return nil, io.EOF
		}
		return data, nil
	}
}

// Close releases the underlying connection. It is idempotent and safe to
// call while the stream is mid-flight; subsequent Recv calls return
// ErrStreamClosed.
func (s *rawStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}

// ChatCompletionStream yields ChatCompletionChunk values until io.EOF.
//
// The stream is forward-only and single-consumption. Errors are terminal:
// after Recv returns a non-nil error other than a skipped decode failure,
// no further chunks are produced.
type ChatCompletionStream struct {
	rawStream
	policy DecodePolicy
}

func newChatCompletionStream(resp *http.Response, policy DecodePolicy) *ChatCompletionStream {
	return &ChatCompletionStream{rawStream: newRawStream(resp), policy: policy}
}

func (s *ChatCompletionStream) Recv() (*ChatCompletionChunk, error) {
	for {
		data, err := s.next()
		if err != nil {
			return nil, err
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			if s.policy == DecodeSkip {
				continue
			}
			s.done = true
			return nil, &Error{
				Kind:    ErrKindDecode,
				Message: "failed to decode stream chunk",
				Raw:     append([]byte(nil), data...),
				Cause:   err,
			}
		}
		if chunk.Error != nil {
			s.done = true
			return nil, &Error{
				Kind:    ErrKindServer,
				Message: chunk.Error.Message,
				Type:    chunk.Error.Type,
				Code:    stringifyCode(chunk.Error.Code),
				Raw:     append([]byte(nil), data...),
			}
		}
		return &chunk, nil
	}
}

// Collect drives the stream to completion and folds every chunk into a
// single ChatCompletion, closing the stream in all cases. The result is
// shaped exactly like the buffered endpoint's response.
func (s *ChatCompletionStream) Collect() (*ChatCompletion, error) {
	defer s.Close()

	var acc ChatAccumulator
	for {
		chunk, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		acc.Add(chunk)
	}
	return acc.Response(), nil
}

// CompletionStream yields CompletionChunk values until io.EOF.
type CompletionStream struct {
	rawStream
	policy DecodePolicy
}

func newCompletionStream(resp *http.Response, policy DecodePolicy) *CompletionStream {
	return &CompletionStream{rawStream: newRawStream(resp), policy: policy}
}

func (s *CompletionStream) Recv() (*CompletionChunk, error) {
	for {
		data, err := s.next()
		if err != nil {
			return nil, err
		}

		var chunk CompletionChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			if s.policy == DecodeSkip {
				continue
			}
			s.done = true
			return nil, &Error{
				Kind:    ErrKindDecode,
				Message: "failed to decode stream chunk",
				Raw:     append([]byte(nil), data...),
				Cause:   err,
			}
		}
		if chunk.Error != nil {
			s.done = true
			return nil, &Error{
				Kind:    ErrKindServer,
				Message: chunk.Error.Message,
				Type:    chunk.Error.Type,
				Code:    stringifyCode(chunk.Error.Code),
				Raw:     append([]byte(nil), data...),
			}
		}
		return &chunk, nil
	}
}

// Collect drives the stream to completion and folds every chunk into a
// single Completion, closing the stream in all cases.
func (s *CompletionStream) Collect() (*Completion, error) {
	defer s.Close()

	var acc CompletionAccumulator
	for {
		chunk, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		acc.Add(chunk)
	}
	return acc.Response(), nil
}
