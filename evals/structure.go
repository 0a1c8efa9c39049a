// Copyright (c) Microsoft. All rights reserved.

package evals

import (
	"context"
	"fmt"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// StructureCheckName is the name reported by [StructureCheck].
const StructureCheckName = "StructureCheck"

// DefaultClassifierModel is the model that grades answer structure.
const DefaultClassifierModel = "gpt-4o-mini"

var choiceScores = map[string]float64{"Y": 1, "N": 0}

type classification struct {
	Reasoning string `json:"reasoning" jsonschema:"required,description=Step by step reasoning before choosing"`
	Choice    string `json:"choice" jsonschema:"required,enum=Y|N"`
}

// StructureCheck asks a model whether an answer follows the markdown layout
// the agent is instructed to use.
type StructureCheck struct {
	client af.ChatClient
	model  string
}

// NewStructureCheck returns the classifier, grading with model or
// [DefaultClassifierModel] when model is empty.
func NewStructureCheck(client af.ChatClient, model string) *StructureCheck {
	if model == "" {
		model = DefaultClassifierModel
	}
	return &StructureCheck{client: client, model: model}
}

func (c *StructureCheck) Name() string { return StructureCheckName }

// Score grades s.Output. Y scores 1 and N scores 0; the model's reasoning
// and choice are returned as metadata.
func (c *StructureCheck) Score(ctx context.Context, s *Sample) (*Score, error) {
	out, err := af.GenerateObject[classification](ctx, c.client, "structure_check",
		structurePrompt(s.Output), &af.ChatOptions{ModelID: c.model})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StructureCheckName, err)
	}
	return &Score{
		Name:  StructureCheckName,
		Score: choiceScores[out.Choice],
		Metadata: map[string]any{
			"choice":    out.Choice,
			"rationale": out.Reasoning,
		},
	}, nil
}

func structurePrompt(output string) string {
	return `Does the response adhere to the correct structure? (Y/N)
Agents should provide answers in the following format:
- Use **bold** for important information like temperature and weather conditions
- Use headings to organize sections:
  - ## Weather in [Original City]
  - ## Activities in [Original City]
  - ## Nearby Options (only when user requests nearby cities)
  - ### [Nearby City Name] - Weather & Activities (for each nearby city when requested)
- Use bullet points (-) for listing weather details and activities
- Include links to activities when available using [Activity Name](URL) format
- Use code blocks (` + "``" + `) for specific data like coordinates or exact measurements
- Format temperature with units clearly (e.g., **22°C** or **72°F**)
- When showing nearby cities, include distance information (e.g., "**Springfield** (45km away)")

Response:
` + output + `

Answer by first writing out your reasoning step by step, then choose Y or N.`
}
