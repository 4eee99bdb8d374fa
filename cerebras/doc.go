// Package cerebras is a client SDK for the Cerebras Inference API.
//
// It exposes chat completions, text completions and the model catalog, in
// both buffered and streaming form. Streaming responses are decoded from
// server-sent events into typed chunks; an accumulator folds a chunk stream
// into the same shape the buffered endpoints return.
//
// All failures are classified into a closed set of error kinds (see
// ErrorKind) so callers can implement retry policy without string matching.
package cerebras
