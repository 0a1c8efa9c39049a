// Copyright (c) Microsoft. All rights reserved.

package braintrust

import (
	"encoding/json"
	"sort"
	"strings"
)

// Event is one logged record of an experiment. Input, Output and Expected
// are kept raw since their shape depends on the task that produced them.
type Event struct {
	ID       string          `json:"id"`
	Input    json.RawMessage `json:"input,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
	Expected json.RawMessage `json:"expected,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
	Scores   map[string]any  `json:"scores,omitempty"`
	Tags     []string        `json:"tags,omitempty"`

	raw json.RawMessage
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Event(p)
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Instructions returns the agent instructions recorded in the event
// metadata, looked up under "instructions", "actualInstructions" and
// "parameters.instructions" in that order.
func (e *Event) Instructions() string {
	if s, ok := e.Metadata["instructions"].(string); ok && s != "" {
		return s
	}
	if s, ok := e.Metadata["actualInstructions"].(string); ok && s != "" {
		return s
	}
	if params, ok := e.Metadata["parameters"].(map[string]any); ok {
		if s, ok := params["instructions"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// MentionsWeather reports whether "weather" appears anywhere in the event,
// case-insensitively.
func (e *Event) MentionsWeather() bool {
	raw := e.raw
	if raw == nil {
		raw, _ = json.Marshal(e)
	}
	return strings.Contains(strings.ToLower(string(raw)), "weather")
}

// InputKind names the JSON kind of the input: "string", "array", "object",
// "number", "boolean" or "undefined" when absent or null.
func (e *Event) InputKind() string {
	s := strings.TrimSpace(string(e.Input))
	if s == "" || s == "null" {
		return "undefined"
	}
	switch s[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

// InputString returns the input when it is a JSON string.
func (e *Event) InputString() (string, bool) {
	if e.InputKind() != "string" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(e.Input, &s); err != nil {
		return "", false
	}
	return s, true
}

// FirstInputMessage returns the role and raw content of the first message
// when the input is an array of messages.
func (e *Event) FirstInputMessage() (role string, content json.RawMessage, ok bool) {
	if e.InputKind() != "array" {
		return "", nil, false
	}
	var msgs []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(e.Input, &msgs); err != nil || len(msgs) == 0 {
		return "", nil, false
	}
	return msgs[0].Role, msgs[0].Content, true
}

// IsWeatherEvaluation reports whether the event is a main evaluation row of
// the weather agent: its input is a plain string that mentions weather.
func (e *Event) IsWeatherEvaluation() bool {
	s, ok := e.InputString()
	return ok && strings.Contains(s, "weather")
}

// MetadataKeys returns the metadata keys in sorted order.
func (e *Event) MetadataKeys() []string {
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Truncate shortens s to at most n bytes, appending "..." when it cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
