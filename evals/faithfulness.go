// Copyright (c) Microsoft. All rights reserved.

package evals

import (
	"context"
	"fmt"
	"strings"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// FaithfulnessName is the name reported by [Faithfulness].
const FaithfulnessName = "Faithfulness"

const activitiesToolName = "weatherActivitiesTool"

type statementVerdict struct {
	Statement string `json:"statement" jsonschema:"required,description=One factual claim made in the answer"`
	Reason    string `json:"reason" jsonschema:"required,description=Why the context does or does not support the claim"`
	Verdict   string `json:"verdict" jsonschema:"required,enum=Y|N"`
}

type faithfulnessVerdicts struct {
	Statements []statementVerdict `json:"statements" jsonschema:"required,description=Every factual claim in the answer"`
}

// Faithfulness asks a model to split an answer into claims and check each
// against the activity descriptions recorded for the sample. The score is
// the share of supported claims.
type Faithfulness struct {
	client af.ChatClient
	model  string
}

// NewFaithfulness returns the grader, using model or
// [DefaultClassifierModel] when model is empty.
func NewFaithfulness(client af.ChatClient, model string) *Faithfulness {
	if model == "" {
		model = DefaultClassifierModel
	}
	return &Faithfulness{client: client, model: model}
}

func (f *Faithfulness) Name() string { return FaithfulnessName }

// Score skips samples whose metadata.tool_info carries no
// weatherActivitiesTool results with activity descriptions.
func (f *Faithfulness) Score(ctx context.Context, s *Sample) (*Score, error) {
	descriptions := activityDescriptions(s.Metadata["tool_info"])
	if len(descriptions) == 0 {
		return nil, nil
	}
	grounding := strings.Join(descriptions, "\n\n")

	out, err := af.GenerateObject[faithfulnessVerdicts](ctx, f.client, "faithfulness",
		faithfulnessPrompt(s.Input, s.Output, grounding), &af.ChatOptions{ModelID: f.model})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FaithfulnessName, err)
	}

	supported := 0
	for _, st := range out.Statements {
		if st.Verdict == "Y" {
			supported++
		}
	}
	score := 0.0
	if len(out.Statements) > 0 {
		score = float64(supported) / float64(len(out.Statements))
	}
	return &Score{
		Name:  FaithfulnessName,
		Score: score,
		Metadata: map[string]any{
			"context":    grounding,
			"statements": out.Statements,
			"supported":  supported,
		},
	}, nil
}

// activityDescriptions walks recorded tool results for activity
// descriptions, in order.
func activityDescriptions(info any) []string {
	msgs, _ := info.([]any)
	var out []string
	for _, m := range msgs {
		msg, _ := m.(map[string]any)
		parts, _ := msg["content"].([]any)
		for _, p := range parts {
			part, _ := p.(map[string]any)
			if part["toolName"] != activitiesToolName {
				continue
			}
			result, _ := part["result"].(map[string]any)
			activities, _ := result["activities"].([]any)
			for _, a := range activities {
				activity, _ := a.(map[string]any)
				if d, _ := activity["description"].(string); d != "" {
					out = append(out, d)
				}
			}
		}
	}
	return out
}

func faithfulnessPrompt(input, output, context string) string {
	return `Judge whether an answer is faithful to the given context.
Break the answer into standalone factual claims. For each claim decide whether
it can be inferred from the context alone: answer Y if it can and N if it
cannot. Claims about information missing from the context are N.

Question:
` + input + `

Context:
` + context + `

Answer:
` + output
}
