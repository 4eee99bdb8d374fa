package cerebras

import (
	"sort"
	"strings"
)

// ChatAccumulator folds a sequence of chat chunks into the buffered
// response shape.
//
// Choices are keyed by their wire index and created on first sight; within
// one index, fragments are concatenated in arrival order. Tool calls are
// merged the same way by their own index inside the choice: the protocol
// splits both free text and tool arguments across chunks arbitrarily, so
// every fragment field is append-only. Last-write-wins applies only to the
// finish reason, usage and time info, which servers emit once at the end.
type ChatAccumulator struct {
	id                string
	created           int64
	model             string
	systemFingerprint string

	slots map[int]*chatSlot

	usage    *Usage
	timeInfo *TimeInfo
}

type chatSlot struct {
	role      Role
	content   strings.Builder
	toolCalls map[int]*toolCallAcc
	finish    FinishReason
}

type toolCallAcc struct {
	id       string
	typ      string
	name     strings.Builder
	argsText strings.Builder
}

// Add folds one chunk into the accumulator.
func (a *ChatAccumulator) Add(chunk *ChatCompletionChunk) {
	if chunk == nil {
		return
	}
	if a.id == "" {
		a.id = chunk.ID
	}
	if a.created == 0 {
		a.created = chunk.Created
	}
	if a.model == "" {
		a.model = chunk.Model
	}
	if a.systemFingerprint == "" {
		a.systemFingerprint = chunk.SystemFingerprint
	}
	if chunk.Usage != nil {
		u := *chunk.Usage
		a.usage = &u
	}
	if chunk.TimeInfo != nil {
		ti := *chunk.TimeInfo
		a.timeInfo = &ti
	}

	for _, choice := range chunk.Choices {
		slot := a.slot(choice.Index)
		d := choice.Delta
		if d.Role != "" {
			slot.role = d.Role
		}
		if d.Content != nil {
			slot.content.WriteString(*d.Content)
		}
		for _, tc := range d.ToolCalls {
			acc, ok := slot.toolCalls[tc.Index]
			if !ok {
				acc = &toolCallAcc{}
				slot.toolCalls[tc.Index] = acc
			}
			if tc.ID != "" {
				acc.id = tc.ID
			}
			if tc.Type != "" {
				acc.typ = tc.Type
			}
			acc.name.WriteString(tc.Function.Name)
			acc.argsText.WriteString(tc.Function.Arguments)
		}
		if choice.FinishReason != "" {
			slot.finish = choice.FinishReason
		}
	}
}

func (a *ChatAccumulator) slot(index int) *chatSlot {
	if a.slots == nil {
		a.slots = make(map[int]*chatSlot)
	}
	s, ok := a.slots[index]
	if !ok {
		s = &chatSlot{toolCalls: make(map[int]*toolCallAcc)}
		a.slots[index] = s
	}
	return s
}

// Response finalizes the accumulated state. Choices come out sorted by
// index; a stream holding nothing but the sentinel yields zero choices.
func (a *ChatAccumulator) Response() *ChatCompletion {
	out := &ChatCompletion{
		ID:                a.id,
		Object:            "chat.completion",
		Created:           a.created,
		Model:             a.model,
		SystemFingerprint: a.systemFingerprint,
		Usage:             a.usage,
		TimeInfo:          a.timeInfo,
	}

	for _, idx := range sortedKeys(a.slots) {
		slot := a.slots[idx]
		role := slot.role
		if role == "" {
			role = RoleAssistant
		}
		msg := ChatMessage{Role: role, Content: slot.content.String()}
		for _, tcIdx := range sortedKeys(slot.toolCalls) {
			tc := slot.toolCalls[tcIdx]
			typ := tc.typ
			if typ == "" {
				typ = "function"
			}
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:   tc.id,
				Type: typ,
				Function: FunctionCall{
					Name:      tc.name.String(),
					Arguments: tc.argsText.String(),
				},
			})
		}
		out.Choices = append(out.Choices, ChatChoice{
			Index:        idx,
			Message:      msg,
			FinishReason: slot.finish,
		})
	}
	return out
}

// CompletionAccumulator folds text completion chunks the same way, with
// plain text fragments instead of a message delta.
type CompletionAccumulator struct {
	id      string
	created int64
	model   string

	slots map[int]*completionSlot

	usage    *Usage
	timeInfo *TimeInfo
}

type completionSlot struct {
	text   strings.Builder
	finish FinishReason
}

func (a *CompletionAccumulator) Add(chunk *CompletionChunk) {
	if chunk == nil {
		return
	}
	if a.id == "" {
		a.id = chunk.ID
	}
	if a.created == 0 {
		a.created = chunk.Created
	}
	if a.model == "" {
		a.model = chunk.Model
	}
	if chunk.Usage != nil {
		u := *chunk.Usage
		a.usage = &u
	}
	if chunk.TimeInfo != nil {
		ti := *chunk.TimeInfo
		a.timeInfo = &ti
	}

	for _, choice := range chunk.Choices {
		if a.slots == nil {
			a.slots = make(map[int]*completionSlot)
		}
		slot, ok := a.slots[choice.Index]
		if !ok {
			slot = &completionSlot{}
			a.slots[choice.Index] = slot
		}
		if choice.Text != nil {
			slot.text.WriteString(*choice.Text)
		}
		if choice.FinishReason != "" {
			slot.finish = choice.FinishReason
		}
	}
}

func (a *CompletionAccumulator) Response() *Completion {
	out := &Completion{
		ID:       a.id,
		Object:   "text_completion",
		Created:  a.created,
		Model:    a.model,
		Usage:    a.usage,
		TimeInfo: a.timeInfo,
	}
	for _, idx := range sortedKeys(a.slots) {
		slot := a.slots[idx]
		out.Choices = append(out.Choices, CompletionChoice{
			Index:        idx,
			Text:         slot.text.String(),
			FinishReason: slot.finish,
		})
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
