package cerebras

import (
	"context"
	"encoding/json"
	"net/http"
)

// ChatCompletionRequest is the request body for the chat completions
// endpoint. Zero-valued optional fields are omitted from the wire form.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`

	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`
	Stop        Stop     `json:"stop,omitempty"`
	User        string   `json:"user,omitempty"`

	Stream bool `json:"stream,omitempty"`

	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Tools          []Tool          `json:"tools,omitempty"`
	ToolChoice     *ToolChoice     `json:"tool_choice,omitempty"`

	LogProbs    *bool `json:"logprobs,omitempty"`
	TopLogProbs *int  `json:"top_logprobs,omitempty"`
}

// ChatCompletion is the buffered chat response.
type ChatCompletion struct {
	ID                string       `json:"id"`
	Object            string       `json:"object"`
	Created           int64        `json:"created"`
	Model             string       `json:"model"`
	SystemFingerprint string       `json:"system_fingerprint,omitempty"`
	Choices           []ChatChoice `json:"choices"`
	Usage             *Usage       `json:"usage,omitempty"`
	TimeInfo          *TimeInfo    `json:"time_info,omitempty"`
}

// Text returns the content of the first choice, or "" if there is none.
// Most single-choice callers want exactly this.
func (c *ChatCompletion) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

type ChatChoice struct {
	Index        int          `json:"index"`
	Message      ChatMessage  `json:"message"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// ChatCompletionChunk is one streamed increment of a chat response.
type ChatCompletionChunk struct {
	ID                string            `json:"id"`
	Object            string            `json:"object"`
	Created           int64             `json:"created"`
	Model             string            `json:"model"`
	SystemFingerprint string            `json:"system_fingerprint,omitempty"`
	Choices           []ChatChunkChoice `json:"choices"`
	Usage             *Usage            `json:"usage,omitempty"`
	TimeInfo          *TimeInfo         `json:"time_info,omitempty"`

	// Error is set when the server reports a failure mid-stream instead
	// of a delta.
	Error *ChunkError `json:"error,omitempty"`
}

// ChunkError is an in-band error frame delivered over an otherwise
// healthy stream.
type ChunkError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type ChatChunkChoice struct {
	Index        int          `json:"index"`
	Delta        ChatDelta    `json:"delta"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// ChatDelta carries the incremental fields of one choice. Content is a
// pointer so an explicit empty-string fragment survives decoding.
type ChatDelta struct {
	Role      Role            `json:"role,omitempty"`
	Content   *string         `json:"content,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// ToolCallDelta is one fragment of a tool call. Index identifies which
// call within the choice the fragment extends; Name and Arguments are
// partial strings to be concatenated in arrival order.
type ToolCallDelta struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function FunctionCallDelta `json:"function"`
}

type FunctionCallDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatCompletion sends a buffered chat request and decodes the full
// response. The request's Stream field is ignored.
func (c *Client) ChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletion, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}
	r := *req
	r.Stream = false

	raw, err := c.tr.DoJSON(ctx, http.MethodPost, chatCompletionsPath, c.authHeader(), &r)
	if err != nil {
		return nil, classify(err, nil)
	}

	var out ChatCompletion
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{
			Kind:    ErrKindDecode,
			Message: "failed to decode chat completion response",
			Raw:     raw,
			Cause:   err,
		}
	}
	return &out, nil
}

// ChatCompletionStream opens a streaming chat request. The returned
// stream owns the connection; callers must Close it (Collect does so
// itself).
func (c *Client) ChatCompletionStream(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionStream, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}
	r := *req
	r.Stream = true

	hdr := c.authHeader()
	hdr.Set("Accept", "text/event-stream")
	resp, err := c.tr.DoStream(ctx, http.MethodPost, chatCompletionsPath, hdr, &r)
	if err != nil {
		return nil, classify(err, nil)
	}
	return newChatCompletionStream(resp, c.decodePolicy), nil
}

func validateChatRequest(req *ChatCompletionRequest) error {
	if req == nil {
		return &Error{Kind: ErrKindBadRequest, Message: "request must not be nil"}
	}
	if req.Model == "" {
		return &Error{Kind: ErrKindBadRequest, Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return &Error{Kind: ErrKindBadRequest, Message: "at least one message is required"}
	}
	return nil
}
