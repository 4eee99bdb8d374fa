package cerebras

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// ChatMessage is a single turn in a chat conversation, in the exact wire
// shape the API expects.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`

	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

func System(content string) ChatMessage    { return ChatMessage{Role: RoleSystem, Content: content} }
func User(content string) ChatMessage      { return ChatMessage{Role: RoleUser, Content: content} }
func Assistant(content string) ChatMessage { return ChatMessage{Role: RoleAssistant, Content: content} }

// ToolResult builds a tool message answering the tool call with the given id.
func ToolResult(toolCallID, content string) ChatMessage {
	return ChatMessage{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name string `json:"name,omitempty"`

	// Arguments is the function arguments as a JSON-encoded string.
	// Streamed tool calls may split this across several chunks.
	Arguments string `json:"arguments,omitempty"`
}

type Tool struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function,omitempty"`
}

type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// FunctionTool wraps a function definition in the wire-level tool envelope.
func FunctionTool(def FunctionDefinition) Tool {
	return Tool{Type: "function", Function: &def}
}

type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceFunction ToolChoiceMode = "function"
)

// ToolChoice selects how the model may use tools. On the wire it is either
// a bare string ("auto", "none", "required") or an object naming a function.
type ToolChoice struct {
	Mode         ToolChoiceMode
	FunctionName string
}

func (tc ToolChoice) MarshalJSON() ([]byte, error) {
	if tc.Mode == ToolChoiceFunction {
		return json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]any{"name": tc.FunctionName},
		})
	}
	mode := tc.Mode
	if mode == "" {
		mode = ToolChoiceAuto
	}
	return json.Marshal(string(mode))
}

func (tc *ToolChoice) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		tc.Mode = ToolChoiceMode(s)
		tc.FunctionName = ""
		return nil
	}
	var obj struct {
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	tc.Mode = ToolChoiceFunction
	tc.FunctionName = obj.Function.Name
	return nil
}

type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchema        `json:"json_schema,omitempty"`
}

type JSONSchema struct {
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Strict *bool           `json:"strict,omitempty"`
}

// Stop holds stop sequences. A single sequence is serialized as a bare
// string, multiple sequences as an array, matching the API's two wire forms.
type Stop []string

func (s Stop) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

func (s *Stop) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = Stop{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = Stop(many)
	return nil
}

// Prompt is the completion prompt: a bare string or an array of strings.
type Prompt []string

func (p Prompt) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

func (p *Prompt) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*p = Prompt{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*p = Prompt(many)
	return nil
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TimeInfo carries the server-side timing breakdown Cerebras attaches to
// responses. All durations are in seconds.
type TimeInfo struct {
	QueueTime      float64 `json:"queue_time,omitempty"`
	PromptTime     float64 `json:"prompt_time,omitempty"`
	CompletionTime float64 `json:"completion_time,omitempty"`
	TotalTime      float64 `json:"total_time,omitempty"`
	Created        int64   `json:"created,omitempty"`
}

// CreatedAt converts the Created unix timestamp to a time.Time. It
// returns the zero time when the server omitted the field.
func (t *TimeInfo) CreatedAt() time.Time {
	if t == nil || t.Created <= 0 {
		return time.Time{}
	}
	return time.Unix(t.Created, 0).UTC()
}
