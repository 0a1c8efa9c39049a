// Copyright (c) Microsoft. All rights reserved.

package agentframework

import "strings"

// UsageDetails holds token consumption statistics for a model response.
type UsageDetails struct {
	InputTokens  int `json:"inputTokens,omitempty"`
	OutputTokens int `json:"outputTokens,omitempty"`
	TotalTokens  int `json:"totalTokens,omitempty"`
}

// Add accumulates other into u.
func (u *UsageDetails) Add(other UsageDetails) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// ChatResponse is the complete response from a [ChatClient].
type ChatResponse struct {
	Messages     []Message
	ResponseID   string
	ModelID      string
	FinishReason FinishReason
	Usage        UsageDetails
	Raw          any
}

// Text returns the concatenated text of all messages in this response.
func (r *ChatResponse) Text() string {
	var b strings.Builder
	for i := range r.Messages {
		b.WriteString(r.Messages[i].Text())
	}
	return b.String()
}

// AgentResponse is the record of one [Agent.Generate] call.
//
// Messages holds only the turns produced during the call, in order:
// assistant tool-call messages, the tool messages answering them, and the
// final assistant message.
//
// Text is the final assistant text. A generator that does not report its
// turns leaves Messages empty and sets only Text.
type AgentResponse struct {
	Messages []Message
	Text     string
	AgentID  string
	Steps    int
	Usage    UsageDetails
}

// ToolNames returns the distinct names of tools invoked during the call,
// in first-use order.
func (r *AgentResponse) ToolNames() []string {
	return ToolNames(r.Messages)
}

// ToolNames collects the distinct tool names referenced by tool-call and
// tool-result parts, in first-seen order.
func ToolNames(messages []Message) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for i := range messages {
		for _, p := range messages[i].Content {
			switch v := p.(type) {
			case *ToolCallPart:
				add(v.ToolName)
			case *ToolResultPart:
				add(v.ToolName)
			}
		}
	}
	return names
}
