// Copyright (c) Microsoft. All rights reserved.

package activities

import (
	"context"
	"log/slog"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/workflow"
)

// ToolName is the name the activities tool is exposed under.
const ToolName = "weatherActivitiesTool"

// ToolOutput is what the activities tool returns to the model.
type ToolOutput struct {
	Activities  []Suggestion `json:"activities"`
	SearchQuery string       `json:"searchQuery"`
}

// Suggest runs the workflow once for city and weather. A run that does not
// succeed is reported as an error wrapping [af.ErrWorkflowFailed].
func Suggest(ctx context.Context, wf *workflow.Workflow, in Input) (*ToolOutput, error) {
	run := wf.CreateRun()
	res, err := run.Start(ctx, in)
	if err != nil {
		return nil, err
	}
	if res.Status != workflow.StatusSuccess {
		slog.WarnContext(ctx, "activities workflow failed",
			"run_id", res.RunID, "step", res.FailedStep, "error", res.Err)
		msg := "Workflow execution failed with status: " + string(res.Status)
		if res.Err != nil {
			msg += ": " + res.Err.Error()
		}
		return nil, &af.MessageError{Kind: af.ErrWorkflowFailed, Message: msg, Cause: res.Err}
	}

	out, err := workflow.ResultAs[*Output](res)
	if err != nil {
		return nil, &af.MessageError{Kind: af.ErrWorkflowFailed, Message: err.Error(), Cause: err}
	}
	return &ToolOutput{Activities: out.Activities, SearchQuery: out.SearchQuery}, nil
}

// NewTool exposes the workflow as an agent tool. Each call starts a new run.
func NewTool(wf *workflow.Workflow) af.Tool {
	return af.NewTypedTool(ToolName, "Find weather-appropriate activities for a city based on current weather conditions",
		func(ctx context.Context, in Input) (*ToolOutput, error) {
			return Suggest(ctx, wf, in)
		})
}
