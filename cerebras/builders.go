package cerebras

import "encoding/json"

// ChatCompletionBuilder assembles a ChatCompletionRequest fluently.
// Terminal Build returns the request; nothing is sent until the caller
// passes it to the client.
type ChatCompletionBuilder struct {
	req ChatCompletionRequest
}

// NewChatCompletion starts a builder for the given model.
func NewChatCompletion(model string) *ChatCompletionBuilder {
	return &ChatCompletionBuilder{req: ChatCompletionRequest{Model: model}}
}

func (b *ChatCompletionBuilder) Message(m ChatMessage) *ChatCompletionBuilder {
	b.req.Messages = append(b.req.Messages, m)
	return b
}

func (b *ChatCompletionBuilder) SystemMessage(content string) *ChatCompletionBuilder {
	return b.Message(System(content))
}

func (b *ChatCompletionBuilder) UserMessage(content string) *ChatCompletionBuilder {
	return b.Message(User(content))
}

func (b *ChatCompletionBuilder) AssistantMessage(content string) *ChatCompletionBuilder {
	return b.Message(Assistant(content))
}

func (b *ChatCompletionBuilder) ToolMessage(toolCallID, content string) *ChatCompletionBuilder {
	return b.Message(ToolResult(toolCallID, content))
}

func (b *ChatCompletionBuilder) MaxTokens(n int) *ChatCompletionBuilder {
	b.req.MaxTokens = &n
	return b
}

func (b *ChatCompletionBuilder) Temperature(t float64) *ChatCompletionBuilder {
	b.req.Temperature = &t
	return b
}

func (b *ChatCompletionBuilder) TopP(p float64) *ChatCompletionBuilder {
	b.req.TopP = &p
	return b
}

func (b *ChatCompletionBuilder) Seed(s int64) *ChatCompletionBuilder {
	b.req.Seed = &s
	return b
}

func (b *ChatCompletionBuilder) Stop(sequences ...string) *ChatCompletionBuilder {
	b.req.Stop = append(b.req.Stop, sequences...)
	return b
}

func (b *ChatCompletionBuilder) User(id string) *ChatCompletionBuilder {
	b.req.User = id
	return b
}

// JSONMode asks the model to emit a valid JSON object.
func (b *ChatCompletionBuilder) JSONMode() *ChatCompletionBuilder {
	b.req.ResponseFormat = &ResponseFormat{Type: ResponseFormatJSONObject}
	return b
}

// JSONSchema constrains the output to the given schema.
func (b *ChatCompletionBuilder) JSONSchema(name string, schema json.RawMessage, strict bool) *ChatCompletionBuilder {
	b.req.ResponseFormat = &ResponseFormat{
		Type:       ResponseFormatJSONSchema,
		JSONSchema: &JSONSchema{Name: name, Schema: schema, Strict: &strict},
	}
	return b
}

func (b *ChatCompletionBuilder) Tool(t Tool) *ChatCompletionBuilder {
	b.req.Tools = append(b.req.Tools, t)
	return b
}

// Function registers a callable function as a tool.
func (b *ChatCompletionBuilder) Function(name, description string, parameters json.RawMessage) *ChatCompletionBuilder {
	return b.Tool(FunctionTool(FunctionDefinition{
		Name:        name,
		Description: description,
		Parameters:  parameters,
	}))
}

func (b *ChatCompletionBuilder) ToolChoice(tc ToolChoice) *ChatCompletionBuilder {
	b.req.ToolChoice = &tc
	return b
}

// Build returns the assembled request. The builder may keep being used;
// each Build returns an independent copy.
func (b *ChatCompletionBuilder) Build() *ChatCompletionRequest {
	r := b.req
	r.Messages = append([]ChatMessage(nil), b.req.Messages...)
	r.Tools = append([]Tool(nil), b.req.Tools...)
	r.Stop = append(Stop(nil), b.req.Stop...)
	return &r
}

// CompletionBuilder assembles a CompletionRequest fluently.
type CompletionBuilder struct {
	req CompletionRequest
}

// NewCompletion starts a builder for the given model and prompt.
func NewCompletion(model, prompt string) *CompletionBuilder {
	return &CompletionBuilder{req: CompletionRequest{Model: model, Prompt: Prompt{prompt}}}
}

func (b *CompletionBuilder) Prompt(parts ...string) *CompletionBuilder {
	b.req.Prompt = append(b.req.Prompt, parts...)
	return b
}

func (b *CompletionBuilder) MaxTokens(n int) *CompletionBuilder {
	b.req.MaxTokens = &n
	return b
}

func (b *CompletionBuilder) Temperature(t float64) *CompletionBuilder {
	b.req.Temperature = &t
	return b
}

func (b *CompletionBuilder) TopP(p float64) *CompletionBuilder {
	b.req.TopP = &p
	return b
}

func (b *CompletionBuilder) Seed(s int64) *CompletionBuilder {
	b.req.Seed = &s
	return b
}

func (b *CompletionBuilder) Stop(sequences ...string) *CompletionBuilder {
	b.req.Stop = append(b.req.Stop, sequences...)
	return b
}

func (b *CompletionBuilder) User(id string) *CompletionBuilder {
	b.req.User = id
	return b
}

// ReturnRawTokens requests token ids instead of decoded text.
func (b *CompletionBuilder) ReturnRawTokens() *CompletionBuilder {
	b.req.ReturnRawTokens = true
	return b
}

func (b *CompletionBuilder) Build() *CompletionRequest {
	r := b.req
	r.Prompt = append(Prompt(nil), b.req.Prompt...)
	r.Stop = append(Stop(nil), b.req.Stop...)
	return &r
}
