// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"fmt"
	"strings"
)

// Role identifies the author of a [Message].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Message is a single turn of a conversation transcript.
//
// The role decides which parts are valid: user and system messages carry
// text, assistant messages carry text and tool calls, and tool messages
// carry tool results. See [Message.Validate].
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content Parts  `json:"content"`
}

// Text returns the concatenated text of all [TextPart] items in this message.
func (m *Message) Text() string {
	var b strings.Builder
	for _, p := range m.Content {
		if tp, ok := p.(*TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool-call parts of this message.
func (m *Message) ToolCalls() []*ToolCallPart {
	var calls []*ToolCallPart
	for _, p := range m.Content {
		if tc, ok := p.(*ToolCallPart); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// ToolResults returns the tool-result parts of this message.
func (m *Message) ToolResults() []*ToolResultPart {
	var results []*ToolResultPart
	for _, p := range m.Content {
		if tr, ok := p.(*ToolResultPart); ok {
			results = append(results, tr)
		}
	}
	return results
}

// Validate reports whether the message's parts are allowed for its role.
// The returned error wraps [ErrBadRequest].
func (m *Message) Validate() error {
	var allowed map[PartType]bool
	switch m.Role {
	case RoleUser, RoleSystem:
		allowed = map[PartType]bool{PartTypeText: true}
	case RoleAssistant:
		allowed = map[PartType]bool{PartTypeText: true, PartTypeToolCall: true}
	case RoleTool:
		allowed = map[PartType]bool{PartTypeToolResult: true}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrBadRequest, m.Role)
	}
	for i, p := range m.Content {
		if p == nil {
			return fmt.Errorf("%w: %s message part %d is empty", ErrBadRequest, m.Role, i)
		}
		if !allowed[p.Type()] {
			return fmt.Errorf("%w: %s message cannot carry a %s part", ErrBadRequest, m.Role, p.Type())
		}
	}
	return nil
}

// NewUserMessage creates a user-role [Message] from a text string.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: Parts{&TextPart{Text: text}}}
}

// NewAssistantMessage creates an assistant-role [Message] from a text string.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: Parts{&TextPart{Text: text}}}
}

// NewSystemMessage creates a system-role [Message] from a text string.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: Parts{&TextPart{Text: text}}}
}

// NewToolMessage creates a tool-role [Message] holding the given results.
func NewToolMessage(results ...*ToolResultPart) Message {
	parts := make(Parts, len(results))
	for i, r := range results {
		parts[i] = r
	}
	return Message{Role: RoleTool, Content: parts}
}

// PrependInstructions inserts a system message at the beginning of the message
// list if instructions are non-empty and no system message already exists.
func PrependInstructions(messages []Message, instructions string) []Message {
	if instructions == "" {
		return messages
	}
	for _, m := range messages {
		if m.Role == RoleSystem {
			return messages
		}
	}
	return append([]Message{NewSystemMessage(instructions)}, messages...)
}

// FinalText returns the text of the last assistant message that carries
// any text, or "" when there is none.
func FinalText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != RoleAssistant {
			continue
		}
		if text := messages[i].Text(); text != "" {
			return text
		}
	}
	return ""
}
