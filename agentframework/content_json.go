// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalPartJSON marshals a single Part into its `type`-discriminated form.
func MarshalPartJSON(p Part) ([]byte, error) {
	switch v := p.(type) {
	case *TextPart:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{string(PartTypeText), v.Text})

	case *ToolCallPart:
		args := v.Args
		if len(args) == 0 {
			args = json.RawMessage(`{}`)
		}
		return json.Marshal(struct {
			Type       string          `json:"type"`
			ToolCallID string          `json:"toolCallId"`
			ToolName   string          `json:"toolName"`
			Args       json.RawMessage `json:"args"`
		}{string(PartTypeToolCall), v.ToolCallID, v.ToolName, args})

	case *ToolResultPart:
		return json.Marshal(struct {
			Type       string `json:"type"`
			ToolCallID string `json:"toolCallId"`
			ToolName   string `json:"toolName"`
			Result     any    `json:"result"`
			IsError    bool   `json:"isError,omitempty"`
		}{string(PartTypeToolResult), v.ToolCallID, v.ToolName, v.Result, v.IsError})

	default:
		return nil, fmt.Errorf("unknown part type: %T", p)
	}
}

// UnmarshalPartJSON unmarshals a single Part from its `type`-discriminated form.
func UnmarshalPartJSON(data []byte) (Part, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal part envelope: %w", err)
	}

	switch PartType(env.Type) {
	case PartTypeText:
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &TextPart{Text: v.Text}, nil

	case PartTypeToolCall:
		var v struct {
			ToolCallID string          `json:"toolCallId"`
			ToolName   string          `json:"toolName"`
			Args       json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &ToolCallPart{ToolCallID: v.ToolCallID, ToolName: v.ToolName, Args: v.Args}, nil

	case PartTypeToolResult:
		var v struct {
			ToolCallID string `json:"toolCallId"`
			ToolName   string `json:"toolName"`
			Result     any    `json:"result"`
			IsError    bool   `json:"isError"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &ToolResultPart{ToolCallID: v.ToolCallID, ToolName: v.ToolName, Result: v.Result, IsError: v.IsError}, nil

	default:
		return nil, fmt.Errorf("unknown part type: %q", env.Type)
	}
}

// Parts is the content of a [Message]: an ordered list of typed parts.
//
// On the wire it is either a plain string (a single text part) or an array
// of parts. Marshalling emits the string form whenever the content is a
// single text part.
type Parts []Part

// MarshalJSON serializes the parts, collapsing a lone text part to a string.
func (ps Parts) MarshalJSON() ([]byte, error) {
	if len(ps) == 1 {
		if tp, ok := ps[0].(*TextPart); ok {
			return json.Marshal(tp.Text)
		}
	}
	items := make([]json.RawMessage, len(ps))
	for i, p := range ps {
		b, err := MarshalPartJSON(p)
		if err != nil {
			return nil, fmt.Errorf("marshal part[%d]: %w", i, err)
		}
		items[i] = b
	}
	return json.Marshal(items)
}

// UnmarshalJSON accepts a string, an array of parts, or null.
func (ps *Parts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*ps = nil
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*ps = Parts{&TextPart{Text: s}}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("content must be a string or an array of parts: %w", err)
	}
	result := make(Parts, len(raw))
	for i, r := range raw {
		p, err := UnmarshalPartJSON(r)
		if err != nil {
			return fmt.Errorf("unmarshal part[%d]: %w", i, err)
		}
		result[i] = p
	}
	*ps = result
	return nil
}
