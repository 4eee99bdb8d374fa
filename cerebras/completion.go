package cerebras

import (
	"context"
	"encoding/json"
	"net/http"
)

// CompletionRequest is the request body for the raw text completions
// endpoint.
type CompletionRequest struct {
	Model  string `json:"model"`
	Prompt Prompt `json:"prompt"`

	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`
	Stop        Stop     `json:"stop,omitempty"`
	User        string   `json:"user,omitempty"`

	Stream bool `json:"stream,omitempty"`

	ReturnRawTokens bool `json:"return_raw_tokens,omitempty"`
}

// Completion is the buffered text completion response.
type Completion struct {
	ID       string             `json:"id"`
	Object   string             `json:"object"`
	Created  int64              `json:"created"`
	Model    string             `json:"model"`
	Choices  []CompletionChoice `json:"choices"`
	Usage    *Usage             `json:"usage,omitempty"`
	TimeInfo *TimeInfo          `json:"time_info,omitempty"`
}

// Text returns the text of the first choice, or "" if there is none.
func (c *Completion) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Text
}

type CompletionChoice struct {
	Index        int          `json:"index"`
	Text         string       `json:"text"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// CompletionChunk is one streamed increment of a text completion.
type CompletionChunk struct {
	ID       string                  `json:"id"`
	Object   string                  `json:"object"`
	Created  int64                   `json:"created"`
	Model    string                  `json:"model"`
	Choices  []CompletionChunkChoice `json:"choices"`
	Usage    *Usage                  `json:"usage,omitempty"`
	TimeInfo *TimeInfo               `json:"time_info,omitempty"`

	Error *ChunkError `json:"error,omitempty"`
}

// CompletionChunkChoice carries one choice's text fragment. Text is a
// pointer so an explicit empty fragment survives decoding.
type CompletionChunkChoice struct {
	Index        int          `json:"index"`
	Text         *string      `json:"text,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// Completion sends a buffered text completion request. The request's
// Stream field is ignored.
func (c *Client) Completion(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	if err := validateCompletionRequest(req); err != nil {
		return nil, err
	}
	r := *req
	r.Stream = false

	raw, err := c.tr.DoJSON(ctx, http.MethodPost, completionsPath, c.authHeader(), &r)
	if err != nil {
		return nil, classify(err, nil)
	}

	var out Completion
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{
			Kind:    ErrKindDecode,
			Message: "failed to decode completion response",
			Raw:     raw,
			Cause:   err,
		}
	}
	return &out, nil
}

// CompletionStream opens a streaming text completion request.
func (c *Client) CompletionStream(ctx context.Context, req *CompletionRequest) (*CompletionStream, error) {
	if err := validateCompletionRequest(req); err != nil {
		return nil, err
	}
	r := *req
	r.Stream = true

	hdr := c.authHeader()
	hdr.Set("Accept", "text/event-stream")
	resp, err := c.tr.DoStream(ctx, http.MethodPost, completionsPath, hdr, &r)
	if err != nil {
		return nil, classify(err, nil)
	}
	return newCompletionStream(resp, c.decodePolicy), nil
}

func validateCompletionRequest(req *CompletionRequest) error {
	if req == nil {
		return &Error{Kind: ErrKindBadRequest, Message: "request must not be nil"}
	}
	if req.Model == "" {
		return &Error{Kind: ErrKindBadRequest, Message: "model is required"}
	}
	if len(req.Prompt) == 0 {
		return &Error{Kind: ErrKindBadRequest, Message: "prompt is required"}
	}
	return nil
}
