// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// chatRequest is the Chat Completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_completion_tokens,omitempty"`
	Tools          []toolSpec      `json:"tools,omitempty"`
	ToolChoice     string          `json:"tool_choice,omitempty"`
	User           string          `json:"user,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

// buildRequest converts framework types into a Chat Completions request.
func buildRequest(messages []af.Message, opts *af.ChatOptions, defaultModel string) (*chatRequest, error) {
	req := &chatRequest{Model: defaultModel}
	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		req.Temperature = opts.Temperature
		req.MaxTokens = opts.MaxTokens
		req.User = opts.User
		req.ToolChoice = string(opts.ToolChoice)

		for _, t := range opts.Tools {
			req.Tools = append(req.Tools, toolSpec{
				Type: "function",
				Function: functionSpec{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}
		if len(req.Tools) == 0 {
			req.ToolChoice = ""
		}

		if rf := opts.ResponseFormat; rf != nil {
			req.ResponseFormat = &responseFormat{
				Type:       "json_schema",
				JSONSchema: &jsonSchema{Name: rf.Name, Schema: rf.Schema},
			}
		}
	}
	if req.Model == "" {
		return nil, fmt.Errorf("%w: no model configured", af.ErrConfiguration)
	}

	msgs, err := convertMessages(messages)
	if err != nil {
		return nil, err
	}
	req.Messages = msgs
	return req, nil
}

// convertMessages translates framework messages into chat messages. A tool
// message fans out into one chat message per tool result.
func convertMessages(messages []af.Message) ([]chatMessage, error) {
	result := make([]chatMessage, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case af.RoleTool:
			for _, tr := range msg.ToolResults() {
				content, err := marshalResult(tr.Result)
				if err != nil {
					return nil, fmt.Errorf("%w: tool result %s: %v", af.ErrInvalidRequest, tr.ToolCallID, err)
				}
				result = append(result, chatMessage{
					Role:       string(af.RoleTool),
					Content:    &content,
					ToolCallID: tr.ToolCallID,
				})
			}

		case af.RoleAssistant:
			cm := chatMessage{Role: string(af.RoleAssistant)}
			if text := msg.Text(); text != "" {
				cm.Content = &text
			}
			for _, tc := range msg.ToolCalls() {
				args := string(tc.Args)
				if args == "" {
					args = "{}"
				}
				cm.ToolCalls = append(cm.ToolCalls, toolCall{
					ID:       tc.ToolCallID,
					Type:     "function",
					Function: functionCall{Name: tc.ToolName, Arguments: args},
				})
			}
			result = append(result, cm)

		default:
			text := msg.Text()
			result = append(result, chatMessage{Role: string(msg.Role), Content: &text})
		}
	}
	return result, nil
}

func marshalResult(v any) (string, error) {
	switch r := v.(type) {
	case string:
		return r, nil
	case json.RawMessage:
		return string(r), nil
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
