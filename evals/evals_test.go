// Copyright (c) Microsoft. All rights reserved.

package evals_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/evals"
)

const jsonDataset = `[
  {
    "input": "What's the weather in Paris and what can I do there?",
    "expected": "Weather and activities for Paris",
    "metadata": {
      "tool_info": [
        {"role": "assistant", "content": [
          {"type": "tool-call", "toolCallId": "c1", "toolName": "weatherTool", "args": {"location": "Paris"}},
          {"type": "tool-call", "toolCallId": "c2", "toolName": "weatherActivitiesTool", "args": {"city": "Paris"}}
        ]},
        {"role": "tool", "content": [
          {"type": "tool-result", "toolCallId": "c1", "toolName": "weatherTool", "result": {}}
        ]}
      ]
    }
  },
  {"input": "Hello"}
]`

const yamlDataset = `
- input: Weather in Oslo?
  metadata:
    tool_info:
      - role: assistant
        content:
          - type: tool-call
            toolName: weatherTool
`

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "dataset.json")
	yamlPath := filepath.Join(dir, "dataset.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDataset), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDataset), 0o600))

	records, err := evals.LoadDataset(jsonPath)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Weather and activities for Paris", records[0].Expected)
	assert.Contains(t, records[0].Metadata, "tool_info")
	assert.Nil(t, records[1].Metadata)

	records, err = evals.LoadDataset(yamlPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Weather in Oslo?", records[0].Input)
}

func TestParseJSON_RequiresInput(t *testing.T) {
	_, err := evals.ParseJSON([]byte(`[{"expected":"x"}]`))
	assert.ErrorContains(t, err, "input is required")
}

func toolCallMessage(names ...string) af.Message {
	m := af.Message{Role: af.RoleAssistant}
	for i, n := range names {
		m.Content = append(m.Content, &af.ToolCallPart{ToolCallID: string(rune('a' + i)), ToolName: n, Args: json.RawMessage(`{}`)})
	}
	return m
}

func TestToolCallCheck(t *testing.T) {
	records, err := evals.ParseJSON([]byte(jsonDataset))
	require.NoError(t, err)

	sample := &evals.Sample{
		Record:   records[0],
		ToolInfo: []af.Message{toolCallMessage("weatherTool", "nearbyCitiesTool")},
	}
	score, err := evals.ToolCallCheck().Score(context.Background(), sample)
	require.NoError(t, err)
	require.NotNil(t, score)

	assert.Equal(t, evals.ToolCallCheckName, score.Name)
	assert.InDelta(t, 0.5, score.Score, 1e-9)
	assert.Equal(t, []string{"weatherTool", "weatherActivitiesTool"}, score.Metadata["expectedTools"])
	assert.Equal(t, []string{"weatherTool", "nearbyCitiesTool"}, score.Metadata["actualTools"])
	assert.Equal(t, 1, score.Metadata["overlap"])
	assert.Equal(t, []string{"weatherActivitiesTool"}, score.Metadata["missingTools"])
	assert.Equal(t, []string{"nearbyCitiesTool"}, score.Metadata["unexpectedTools"])
}

func TestToolCallCheck_NoExpectedTools(t *testing.T) {
	sample := &evals.Sample{Record: evals.Record{
		Input:    "hi",
		Metadata: map[string]any{"tool_info": []any{}},
	}}
	score, err := evals.ToolCallCheck().Score(context.Background(), sample)
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Zero(t, score.Score)
	assert.Equal(t, "No expected tools defined", score.Metadata["reasoning"])
}

func TestToolCallCheck_SkipsWithoutToolInfo(t *testing.T) {
	score, err := evals.ToolCallCheck().Score(context.Background(), &evals.Sample{Record: evals.Record{Input: "hi"}})
	require.NoError(t, err)
	assert.Nil(t, score)
}

type classifierClient struct {
	answer string
	opts   *af.ChatOptions
	prompt string
}

func (c *classifierClient) Response(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	c.opts = opts
	c.prompt = messages[len(messages)-1].Text()
	return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage(c.answer)}}, nil
}

func TestStructureCheck(t *testing.T) {
	for choice, want := range map[string]float64{"Y": 1, "N": 0} {
		t.Run(choice, func(t *testing.T) {
			client := &classifierClient{answer: `{"reasoning":"uses the headings","choice":"` + choice + `"}`}
			score, err := evals.NewStructureCheck(client, "").Score(context.Background(),
				&evals.Sample{Output: "## Weather in Paris\n- **22°C**"})
			require.NoError(t, err)

			assert.Equal(t, evals.StructureCheckName, score.Name)
			assert.Equal(t, want, score.Score)
			assert.Equal(t, choice, score.Metadata["choice"])
			assert.Equal(t, evals.DefaultClassifierModel, client.opts.ModelID)
			assert.Contains(t, client.prompt, "## Weather in Paris\n- **22°C**")
		})
	}
}

func TestStructureCheck_InvalidChoice(t *testing.T) {
	client := &classifierClient{answer: `{"reasoning":"r","choice":"maybe"}`}
	_, err := evals.NewStructureCheck(client, "").Score(context.Background(), &evals.Sample{Output: "x"})
	assert.ErrorIs(t, err, af.ErrSchemaViolation)
}

// scriptedAgent answers each input from a table; unknown inputs fail.
type scriptedAgent map[string]*af.AgentResponse

func (a scriptedAgent) Generate(ctx context.Context, transcript []af.Message, _ ...af.RunOption) (*af.AgentResponse, error) {
	resp, ok := a[transcript[len(transcript)-1].Text()]
	if !ok {
		return nil, errors.New("model unavailable")
	}
	return resp, nil
}

func TestRunner(t *testing.T) {
	records, err := evals.ParseJSON([]byte(jsonDataset))
	require.NoError(t, err)
	records = append(records, evals.Record{Input: "broken"})

	result := af.NewToolMessage(&af.ToolResultPart{ToolCallID: "a", ToolName: "weatherTool", Result: "sunny"})
	agent := scriptedAgent{
		records[0].Input: {
			Messages: []af.Message{
				toolCallMessage("weatherTool", "weatherActivitiesTool"),
				result,
				af.NewAssistantMessage("## Weather in Paris"),
			},
			Text: "## Weather in Paris",
		},
		"Hello": {Text: "Hi there"},
	}

	runner := &evals.Runner{Agent: agent, Scorers: []evals.Scorer{evals.ToolCallCheck()}}
	report, err := runner.Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	first := report.Results[0]
	assert.Equal(t, "## Weather in Paris", first.Output)
	assert.Equal(t, []string{"weatherTool", "weatherActivitiesTool"}, first.Tools)
	require.Len(t, first.Scores, 1)
	assert.Equal(t, 1.0, first.Scores[0].Score)

	assert.Equal(t, "Hi there", report.Results[1].Output)
	assert.Empty(t, report.Results[1].Scores)

	assert.Equal(t, "model unavailable", report.Results[2].Error)
	assert.Equal(t, map[string]float64{evals.ToolCallCheckName: 1}, report.Summary)
}

const activitiesToolInfo = `[
  {"role": "tool", "content": [
    {"type": "tool-result", "toolCallId": "c2", "toolName": "weatherActivitiesTool", "result": {
      "activities": [
        {"name": "Louvre", "description": "World famous art museum, open until 6pm."},
        {"name": "Seine cruise", "description": "One hour boat tour along the river."},
        {"name": "Picnic"}
      ]
    }},
    {"type": "tool-result", "toolCallId": "c1", "toolName": "weatherTool", "result": {"description": "ignored"}}
  ]}
]`

func activitiesSample(t *testing.T) *evals.Sample {
	t.Helper()
	var info any
	require.NoError(t, json.Unmarshal([]byte(activitiesToolInfo), &info))
	return &evals.Sample{
		Record: evals.Record{Input: "What can I do in Paris?", Metadata: map[string]any{"tool_info": info}},
		Output: "Visit the Louvre, open until 6pm, or take a two day Seine cruise.",
	}
}

func TestFaithfulness(t *testing.T) {
	client := &classifierClient{answer: `{"statements":[
		{"statement":"The Louvre is open until 6pm","reason":"stated in context","verdict":"Y"},
		{"statement":"The Seine cruise takes two days","reason":"context says one hour","verdict":"N"}
	]}`}

	score, err := evals.NewFaithfulness(client, "").Score(context.Background(), activitiesSample(t))
	require.NoError(t, err)
	require.NotNil(t, score)

	assert.Equal(t, evals.FaithfulnessName, score.Name)
	assert.Equal(t, 0.5, score.Score)
	assert.Equal(t, 1, score.Metadata["supported"])
	assert.Equal(t, "World famous art museum, open until 6pm.\n\nOne hour boat tour along the river.", score.Metadata["context"])
	assert.Equal(t, evals.DefaultClassifierModel, client.opts.ModelID)
	assert.Contains(t, client.prompt, "One hour boat tour along the river.")
	assert.Contains(t, client.prompt, "two day Seine cruise")
	assert.NotContains(t, client.prompt, "ignored")
}

func TestFaithfulness_SkipsWithoutActivities(t *testing.T) {
	client := &classifierClient{}
	records, err := evals.ParseJSON([]byte(jsonDataset))
	require.NoError(t, err)

	for _, r := range records {
		score, err := evals.NewFaithfulness(client, "").Score(context.Background(), &evals.Sample{Record: r, Output: "x"})
		require.NoError(t, err)
		assert.Nil(t, score)
	}
	assert.Nil(t, client.opts, "model should not be called")
}

func TestFaithfulness_InvalidVerdict(t *testing.T) {
	client := &classifierClient{answer: `{"statements":[{"statement":"s","reason":"r","verdict":"maybe"}]}`}
	_, err := evals.NewFaithfulness(client, "").Score(context.Background(), activitiesSample(t))
	assert.ErrorIs(t, err, af.ErrSchemaViolation)
}
