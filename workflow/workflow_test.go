// Copyright (c) Microsoft. All rights reserved.

package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/workflow"
)

type greeting struct {
	Name  string `json:"name"`
	Shout bool   `json:"shout"`
}

func TestRun_StepsInOrder(t *testing.T) {
	var order []string
	wf, err := workflow.New("greet",
		workflow.Transform("parse", func(ctx context.Context, in string) (greeting, error) {
			order = append(order, "parse")
			return greeting{Name: in, Shout: true}, nil
		}),
		workflow.Transform("render", func(ctx context.Context, g greeting) (string, error) {
			order = append(order, "render")
			s := "hello " + g.Name
			if g.Shout {
				s = strings.ToUpper(s)
			}
			return s, nil
		}),
		workflow.Map("annotate", func(ctx context.Context, s string, prior workflow.Results) (string, error) {
			order = append(order, "annotate")
			g, err := workflow.Output[greeting](prior, "parse")
			if err != nil {
				return "", err
			}
			return s + " (" + g.Name + ")", nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"parse", "render", "annotate"}, wf.StepIDs())

	run := wf.CreateRun()
	_, err = ulid.Parse(run.ID())
	require.NoError(t, err, "run ids are ULIDs")
	assert.Equal(t, workflow.StatusPending, run.Status())

	res, err := run.Start(context.Background(), "ada")
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusSuccess, res.Status)
	assert.Equal(t, run.ID(), res.RunID)
	assert.Equal(t, "greet", res.WorkflowID)
	assert.Equal(t, []string{"parse", "render", "annotate"}, order)
	assert.Equal(t, "HELLO ADA (ada)", res.Result)
	require.Len(t, res.Steps, 3)
	assert.Equal(t, workflow.KindMap, res.Steps[2].Kind)
	assert.NoError(t, res.Err)
	assert.Equal(t, workflow.StatusSuccess, run.Status())

	out, err := workflow.ResultAs[string](res)
	require.NoError(t, err)
	assert.Equal(t, "HELLO ADA (ada)", out)
}

func TestRun_FailingStepAborts(t *testing.T) {
	boom := errors.New("upstream down")
	ran := false
	wf, err := workflow.New("wf",
		workflow.Transform("one", func(ctx context.Context, in int) (int, error) { return in + 1, nil }),
		workflow.Transform("two", func(ctx context.Context, in int) (int, error) { return 0, boom }),
		workflow.Transform("three", func(ctx context.Context, in int) (int, error) {
			ran = true
			return in, nil
		}),
	)
	require.NoError(t, err)

	run := wf.CreateRun()
	res, err := run.Start(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusFailed, res.Status)
	assert.Equal(t, "two", res.FailedStep)
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, ran)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "upstream down", res.Steps[1].Error)
	assert.Equal(t, workflow.StatusFailed, run.Status())

	_, err = workflow.ResultAs[int](res)
	assert.Error(t, err)
}

func TestRun_StartTwice(t *testing.T) {
	wf, err := workflow.New("wf",
		workflow.Transform("id", func(ctx context.Context, in int) (int, error) { return in, nil }),
	)
	require.NoError(t, err)

	run := wf.CreateRun()
	_, err = run.Start(context.Background(), 1)
	require.NoError(t, err)

	_, err = run.Start(context.Background(), 1)
	assert.ErrorIs(t, err, workflow.ErrRunStarted)

	other := wf.CreateRun()
	assert.NotEqual(t, run.ID(), other.ID())
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	wf, err := workflow.New("wf",
		workflow.Transform("explode", func(ctx context.Context, in int) (int, error) { panic("bad input") }),
	)
	require.NoError(t, err)

	res, err := wf.CreateRun().Start(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusFailed, res.Status)
	assert.Contains(t, res.Err.Error(), "bad input")
}

func TestRun_ContextCancelled(t *testing.T) {
	wf, err := workflow.New("wf",
		workflow.Transform("id", func(ctx context.Context, in int) (int, error) { return in, nil }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := wf.CreateRun().Start(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestRun_InputTypeMismatch(t *testing.T) {
	wf, err := workflow.New("wf",
		workflow.Transform("id", func(ctx context.Context, in greeting) (greeting, error) { return in, nil }),
	)
	require.NoError(t, err)

	// Convertible through JSON.
	res, err := wf.CreateRun().Start(context.Background(), map[string]any{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, greeting{Name: "ada"}, res.Result)

	// Not convertible.
	res, err = wf.CreateRun().Start(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusFailed, res.Status)
}

type echoArgs struct {
	Text string `json:"text" jsonschema:"required"`
}

type echoResult struct {
	Echo string `json:"echo"`
}

func TestToolStep(t *testing.T) {
	var gotArgs json.RawMessage
	tool := af.NewTool("echo", "echoes", nil, func(ctx context.Context, args json.RawMessage) (any, error) {
		gotArgs = args
		var a echoArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return map[string]any{"echo": a.Text}, nil
	})

	wf, err := workflow.New("wf",
		workflow.Transform("prep", func(ctx context.Context, in string) (echoArgs, error) {
			return echoArgs{Text: in}, nil
		}),
		workflow.ToolStep[echoResult]("echo", tool),
	)
	require.NoError(t, err)

	res, err := wf.CreateRun().Start(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusSuccess, res.Status)
	assert.JSONEq(t, `{"text":"hi"}`, string(gotArgs))
	assert.Equal(t, echoResult{Echo: "hi"}, res.Result)
	assert.Equal(t, workflow.KindTool, res.Steps[1].Kind)
}

func TestToolStep_Error(t *testing.T) {
	tool := af.NewTypedTool("strict", "needs text", func(ctx context.Context, a echoArgs) (echoResult, error) {
		return echoResult{Echo: a.Text}, nil
	})
	wf, err := workflow.New("wf", workflow.ToolStep[echoResult]("strict", tool))
	require.NoError(t, err)

	res, err := wf.CreateRun().Start(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, af.ErrToolExecution)
}

func TestNew_Validation(t *testing.T) {
	id := workflow.Transform("a", func(ctx context.Context, in int) (int, error) { return in, nil })

	_, err := workflow.New("")
	assert.Error(t, err)

	_, err = workflow.New("wf")
	assert.Error(t, err)

	_, err = workflow.New("wf", id, id)
	assert.ErrorContains(t, err, "duplicate step id")

	_, err = workflow.New("wf", workflow.Transform("", func(ctx context.Context, in int) (int, error) { return in, nil }))
	assert.Error(t, err)
}

func TestWorkflow_Accessors(t *testing.T) {
	wf, err := workflow.New("weather-workflow",
		workflow.Transform("echo", func(ctx context.Context, in int) (int, error) { return in, nil }))
	require.NoError(t, err)

	described := wf.WithDescription("Suggests activities")
	assert.Equal(t, "weather-workflow", described.ID())
	assert.Equal(t, "Suggests activities", described.Description())
	assert.Empty(t, wf.Description())

	run := wf.CreateRun()
	_, err = ulid.ParseStrict(run.ID())
	assert.NoError(t, err)
	assert.NotEqual(t, run.ID(), wf.CreateRun().ID())
}
