// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// chatCompletionResponse is the Chat Completions response body.
type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage,omitempty"`
}

type choice struct {
	Index        int         `json:"index"`
	Message      respMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type respMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	Refusal   *string    `json:"refusal,omitempty"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// parseChatResponse converts the first choice into framework types.
func parseChatResponse(raw *chatCompletionResponse) *af.ChatResponse {
	resp := &af.ChatResponse{
		ResponseID: raw.ID,
		ModelID:    raw.Model,
	}

	if raw.Usage != nil {
		resp.Usage = af.UsageDetails{
			InputTokens:  raw.Usage.PromptTokens,
			OutputTokens: raw.Usage.CompletionTokens,
			TotalTokens:  raw.Usage.TotalTokens,
		}
	}

	c := raw.Choices[0]
	resp.FinishReason = mapFinishReason(c.FinishReason)

	msg := af.Message{Role: af.RoleAssistant}
	switch {
	case c.Message.Content != nil && *c.Message.Content != "":
		msg.Content = append(msg.Content, &af.TextPart{Text: *c.Message.Content})
	case c.Message.Refusal != nil && *c.Message.Refusal != "":
		msg.Content = append(msg.Content, &af.TextPart{Text: *c.Message.Refusal})
	}

	for _, tc := range c.Message.ToolCalls {
		args := json.RawMessage(tc.Function.Arguments)
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		msg.Content = append(msg.Content, &af.ToolCallPart{
			ToolCallID: tc.ID,
			ToolName:   tc.Function.Name,
			Args:       args,
		})
	}

	if len(msg.Content) > 0 {
		resp.Messages = []af.Message{msg}
	}
	return resp
}

func mapFinishReason(s string) af.FinishReason {
	switch s {
	case "stop":
		return af.FinishReasonStop
	case "length":
		return af.FinishReasonLength
	case "tool_calls":
		return af.FinishReasonToolCalls
	case "content_filter":
		return af.FinishReasonContentFilter
	default:
		return af.FinishReason(s)
	}
}
