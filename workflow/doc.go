// Copyright (c) Microsoft. All rights reserved.

// Package workflow runs fixed, linear step pipelines.
//
// A [Workflow] is an ordered list of steps. Each step is one of three kinds:
//
//   - [Transform]: a typed function of the previous step's output
//   - [Map]: like Transform, with read access to earlier steps' outputs
//   - [ToolStep]: invokes an [agentframework.Tool] with the JSON encoding of
//     the previous step's output
//
// Runs execute steps strictly in order. The first failing step ends the run
// with [StatusFailed]; nothing is retried.
//
//	wf, _ := workflow.New("greet",
//	    workflow.Transform("upper", func(ctx context.Context, s string) (string, error) {
//	        return strings.ToUpper(s), nil
//	    }),
//	)
//	res, _ := wf.CreateRun().Start(ctx, "hello")
package workflow
