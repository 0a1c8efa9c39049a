// Copyright (c) Microsoft. All rights reserved.

package evals

import (
	"context"
	"slices"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// Score is the outcome of one scorer on one sample, between 0 and 1.
type Score struct {
	Name     string         `json:"name" yaml:"name"`
	Score    float64        `json:"score" yaml:"score"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Sample is a dataset record together with what the agent did with it.
type Sample struct {
	Record

	// Output is the agent's final text.
	Output string

	// ToolInfo holds the run's tool traffic: assistant turns that call tools
	// and the tool turns answering them.
	ToolInfo []af.Message
}

// Scorer grades a sample. A nil Score with a nil error means the scorer does
// not apply to the sample.
type Scorer interface {
	Name() string
	Score(ctx context.Context, s *Sample) (*Score, error)
}

// ScorerFunc adapts a function to [Scorer].
type ScorerFunc struct {
	ID string
	Fn func(ctx context.Context, s *Sample) (*Score, error)
}

func (f ScorerFunc) Name() string { return f.ID }

func (f ScorerFunc) Score(ctx context.Context, s *Sample) (*Score, error) { return f.Fn(ctx, s) }

// ToolCallCheckName is the name reported by [ToolCallCheck].
const ToolCallCheckName = "toolCallCheck"

// ToolCallCheck scores the share of expected tools the agent actually
// called. Expected tools are the tool names found in the record's
// metadata.tool_info; the sample is skipped when that key is absent.
func ToolCallCheck() Scorer {
	return ScorerFunc{ID: ToolCallCheckName, Fn: toolCallCheck}
}

func toolCallCheck(_ context.Context, s *Sample) (*Score, error) {
	info, ok := s.Metadata["tool_info"]
	if !ok || info == nil {
		return nil, nil
	}

	expected := expectedTools(info)
	actual := af.ToolNames(s.ToolInfo)
	if actual == nil {
		actual = []string{}
	}

	if len(expected) == 0 {
		return &Score{
			Name:  ToolCallCheckName,
			Score: 0,
			Metadata: map[string]any{
				"expectedTools": []string{},
				"actualTools":   actual,
				"overlap":       0,
				"totalExpected": 0,
				"totalActual":   len(actual),
				"reasoning":     "No expected tools defined",
			},
		}, nil
	}

	var missing, unexpected []string
	overlap := 0
	for _, name := range expected {
		if slices.Contains(actual, name) {
			overlap++
		} else {
			missing = append(missing, name)
		}
	}
	for _, name := range actual {
		if !slices.Contains(expected, name) {
			unexpected = append(unexpected, name)
		}
	}

	return &Score{
		Name:  ToolCallCheckName,
		Score: float64(overlap) / float64(len(expected)),
		Metadata: map[string]any{
			"expectedTools":   expected,
			"actualTools":     actual,
			"overlap":         overlap,
			"totalExpected":   len(expected),
			"totalActual":     len(actual),
			"missingTools":    nonNil(missing),
			"unexpectedTools": nonNil(unexpected),
		},
	}, nil
}

// expectedTools collects distinct toolName values from the content parts of
// recorded messages, in first-seen order. The records come from decoded JSON
// or YAML, so they are walked as generic values.
func expectedTools(info any) []string {
	msgs, _ := info.([]any)
	var names []string
	for _, m := range msgs {
		msg, _ := m.(map[string]any)
		parts, _ := msg["content"].([]any)
		for _, p := range parts {
			part, _ := p.(map[string]any)
			name, _ := part["toolName"].(string)
			if name != "" && !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
