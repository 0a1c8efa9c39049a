// Copyright (c) Microsoft. All rights reserved.

package agentframework

// ToolChoice controls how the model selects tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ResponseFormat constrains the model's output to a JSON Schema.
type ResponseFormat struct {
	// Name identifies the schema to the provider.
	Name string

	// Schema is the JSON Schema the output must satisfy.
	Schema []byte
}

// ChatOptions configures a single chat completion request.
// Pointer fields use nil to represent "unset" (use provider default).
type ChatOptions struct {
	ModelID        string
	Temperature    *float64
	MaxTokens      *int
	Tools          []Tool
	ToolChoice     ToolChoice
	ResponseFormat *ResponseFormat
	User           string
	Instructions   string
}

// MergeChatOptions produces a new ChatOptions by overlaying override values
// onto base. Unset fields in override do not overwrite base. Tools with the
// same name are replaced by the override's; instructions are concatenated.
func MergeChatOptions(base, override *ChatOptions) *ChatOptions {
	if base == nil {
		if override == nil {
			return &ChatOptions{}
		}
		cp := *override
		return &cp
	}
	if override == nil {
		cp := *base
		return &cp
	}

	merged := *base
	if override.ModelID != "" {
		merged.ModelID = override.ModelID
	}
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if override.ToolChoice != "" {
		merged.ToolChoice = override.ToolChoice
	}
	if override.ResponseFormat != nil {
		merged.ResponseFormat = override.ResponseFormat
	}
	if override.User != "" {
		merged.User = override.User
	}

	if override.Instructions != "" {
		if merged.Instructions != "" {
			merged.Instructions += "\n" + override.Instructions
		} else {
			merged.Instructions = override.Instructions
		}
	}

	if len(override.Tools) > 0 {
		replaced := make(map[string]Tool, len(override.Tools))
		for _, t := range override.Tools {
			replaced[t.Name()] = t
		}
		tools := make([]Tool, 0, len(merged.Tools)+len(override.Tools))
		seen := make(map[string]bool, len(replaced))
		for _, t := range merged.Tools {
			if r, ok := replaced[t.Name()]; ok {
				tools = append(tools, r)
				seen[t.Name()] = true
				continue
			}
			tools = append(tools, t)
		}
		for _, t := range override.Tools {
			if !seen[t.Name()] {
				tools = append(tools, t)
			}
		}
		merged.Tools = tools
	}

	return &merged
}
