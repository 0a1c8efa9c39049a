// Copyright (c) Microsoft. All rights reserved.

package agentframework

import "encoding/json"

// PartType identifies the kind of a content part within a message.
type PartType string

const (
	PartTypeText       PartType = "text"
	PartTypeToolCall   PartType = "tool-call"
	PartTypeToolResult PartType = "tool-result"
)

// Part is a sealed interface representing one typed piece of a [Message].
// Use a type switch to inspect the underlying type.
type Part interface {
	// Type returns the discriminator for this part.
	Type() PartType

	// sealed prevents external implementations.
	sealed()
}

// base is embedded by every concrete Part type to satisfy the sealed marker.
type base struct{}

func (base) sealed() {}

// TextPart holds plain text.
type TextPart struct {
	base
	Text string
}

func (p *TextPart) Type() PartType { return PartTypeText }

// ToolCallPart records the model's request to invoke a tool.
type ToolCallPart struct {
	base
	ToolCallID string
	ToolName   string
	Args       json.RawMessage
}

func (p *ToolCallPart) Type() PartType { return PartTypeToolCall }

// ToolResultPart carries the output of a tool invocation back to the model.
// Result is an arbitrary JSON-encodable payload. IsError marks results that
// describe a failed invocation.
type ToolResultPart struct {
	base
	ToolCallID string
	ToolName   string
	Result     any
	IsError    bool
}

func (p *ToolResultPart) Type() PartType { return PartTypeToolResult }
