// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// InvocationConfig controls the tool-calling loop.
type InvocationConfig struct {
	// MaxSteps is the maximum number of model round-trips that may request
	// tools. When it is exhausted the model is asked once more with tools
	// disabled so that it answers from what it has. Default: 5.
	MaxSteps int

	// MaxConsecutiveErrors is the number of consecutive failed tool
	// invocations after which the call is aborted. Default: 3.
	MaxConsecutiveErrors int

	// HideErrorDetails replaces tool error text sent back to the model with a
	// generic message.
	HideErrorDetails bool
}

// DefaultInvocationConfig returns the default configuration.
func DefaultInvocationConfig() InvocationConfig {
	return InvocationConfig{
		MaxSteps:             5,
		MaxConsecutiveErrors: 3,
	}
}

// loopResult is what the tool loop hands back to the agent.
type loopResult struct {
	messages []Message
	steps    int
	usage    UsageDetails
}

// invokeFunctions runs the tool-calling loop: ask the model, run any tools it
// requested, append the calls and their results, and ask again until the
// model answers without tool calls.
//
// Only the turns produced by the loop are returned; transcript is not modified.
func invokeFunctions(
	ctx context.Context,
	chat ChatHandler,
	transcript []Message,
	opts *ChatOptions,
	config InvocationConfig,
	fnMiddleware []FunctionMiddleware,
) (*loopResult, error) {
	if config.MaxSteps <= 0 {
		config.MaxSteps = 5
	}
	if config.MaxConsecutiveErrors <= 0 {
		config.MaxConsecutiveErrors = 3
	}

	toolMap := make(map[string]Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		toolMap[t.Name()] = t
	}

	res := &loopResult{}
	consecutiveErrors := 0

	for res.steps < config.MaxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		history := make([]Message, 0, len(transcript)+len(res.messages))
		history = append(history, transcript...)
		history = append(history, res.messages...)

		resp, err := chat(ctx, history, opts)
		if err != nil {
			return nil, err
		}
		res.steps++
		res.usage.Add(resp.Usage)

		assistant := normalizeAssistant(resp.Messages)
		res.messages = append(res.messages, assistant...)

		calls := collectToolCalls(assistant)
		if len(calls) == 0 {
			return res, nil
		}

		results := make([]*ToolResultPart, 0, len(calls))
		for _, call := range calls {
			result := &ToolResultPart{ToolCallID: call.ToolCallID, ToolName: call.ToolName}

			tool, ok := toolMap[call.ToolName]
			if !ok {
				slog.WarnContext(ctx, "unknown tool called", "tool", call.ToolName)
				result.Result = fmt.Sprintf("error: unknown tool %q", call.ToolName)
				result.IsError = true
				results = append(results, result)
				consecutiveErrors++
			} else {
				out, invokeErr := invokeToolWithMiddleware(ctx, tool, call.Args, fnMiddleware)
				if invokeErr != nil {
					consecutiveErrors++
					slog.WarnContext(ctx, "tool invocation error",
						"tool", call.ToolName,
						"error", invokeErr,
						"consecutive_errors", consecutiveErrors,
					)
					msg := "error invoking tool"
					if !config.HideErrorDetails {
						msg = invokeErr.Error()
					}
					result.Result = msg
					result.IsError = true
				} else {
					consecutiveErrors = 0
					result.Result = out
				}
				results = append(results, result)
			}

			if consecutiveErrors >= config.MaxConsecutiveErrors {
				return nil, fmt.Errorf("%w: max consecutive tool errors reached (%d)", ErrToolExecution, consecutiveErrors)
			}
		}

		toolMsg := NewToolMessage(results...)
		toolMsg.ID = uuid.NewString()
		res.messages = append(res.messages, toolMsg)
	}

	// Step budget exhausted with tool results pending: one last answer
	// without tools.
	final := *opts
	final.ToolChoice = ToolChoiceNone

	history := make([]Message, 0, len(transcript)+len(res.messages))
	history = append(history, transcript...)
	history = append(history, res.messages...)

	resp, err := chat(ctx, history, &final)
	if err != nil {
		return nil, err
	}
	res.steps++
	res.usage.Add(resp.Usage)

	assistant := normalizeAssistant(resp.Messages)
	if len(collectToolCalls(assistant)) > 0 {
		return nil, fmt.Errorf("%w (%d)", ErrMaxSteps, config.MaxSteps)
	}
	res.messages = append(res.messages, assistant...)
	return res, nil
}

// normalizeAssistant stamps model output with the assistant role, message
// IDs and tool-call IDs where the provider left them empty.
func normalizeAssistant(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		m.Role = RoleAssistant
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		for _, tc := range m.ToolCalls() {
			if tc.ToolCallID == "" {
				tc.ToolCallID = "call_" + uuid.NewString()
			}
		}
		out = append(out, m)
	}
	return out
}

// collectToolCalls finds all tool-call parts in the given messages.
func collectToolCalls(msgs []Message) []*ToolCallPart {
	var calls []*ToolCallPart
	for i := range msgs {
		calls = append(calls, msgs[i].ToolCalls()...)
	}
	return calls
}

// invokeToolWithMiddleware runs the tool through the function middleware chain.
func invokeToolWithMiddleware(ctx context.Context, tool Tool, args json.RawMessage, mws []FunctionMiddleware) (any, error) {
	handler := func(ctx context.Context, t Tool, a json.RawMessage) (any, error) {
		return t.Invoke(ctx, a)
	}
	final := chainFunctionMiddleware(handler, mws...)
	return final(ctx, tool, args)
}
