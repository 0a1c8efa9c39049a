// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// LoggingMiddleware returns an [AgentMiddleware] that logs agent calls using slog.
func LoggingMiddleware(logger *slog.Logger) AgentMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			start := time.Now()
			logger.InfoContext(ctx, "agent call started",
				"message_count", len(req.Messages),
			)

			resp, err := next(ctx, req)

			duration := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "agent call failed",
					"duration", duration,
					"error", err,
				)
				return nil, err
			}

			logger.InfoContext(ctx, "agent call completed",
				"duration", duration,
				"steps", resp.Steps,
				"new_messages", len(resp.Messages),
				"tools", resp.ToolNames(),
				"input_tokens", resp.Usage.InputTokens,
				"output_tokens", resp.Usage.OutputTokens,
			)
			return resp, nil
		}
	}
}

// ToolLoggingMiddleware returns a [FunctionMiddleware] that logs each tool
// invocation with its arguments, duration and outcome.
func ToolLoggingMiddleware(logger *slog.Logger) FunctionMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next FunctionHandler) FunctionHandler {
		return func(ctx context.Context, tool Tool, args json.RawMessage) (any, error) {
			start := time.Now()
			result, err := next(ctx, tool, args)
			if err != nil {
				logger.WarnContext(ctx, "tool call failed",
					"tool", tool.Name(),
					"args", string(args),
					"duration", time.Since(start),
					"error", err,
				)
				return nil, err
			}
			logger.DebugContext(ctx, "tool call completed",
				"tool", tool.Name(),
				"args", string(args),
				"duration", time.Since(start),
			)
			return result, nil
		}
	}
}

// ChatLoggingMiddleware returns a [ChatMiddleware] that logs each model
// round-trip at debug level.
func ChatLoggingMiddleware(logger *slog.Logger) ChatMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatHandler) ChatHandler {
		return func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
			start := time.Now()
			resp, err := next(ctx, messages, opts)
			if err != nil {
				logger.DebugContext(ctx, "model call failed", "duration", time.Since(start), "error", err)
				return nil, err
			}
			logger.DebugContext(ctx, "model call completed",
				"duration", time.Since(start),
				"model", resp.ModelID,
				"finish_reason", resp.FinishReason,
				"total_tokens", resp.Usage.TotalTokens,
			)
			return resp, nil
		}
	}
}
