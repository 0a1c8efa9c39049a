// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Agent composes a [ChatClient] with instructions, tools and middleware.
// It is stateless between calls: the caller owns the transcript.
//
// Create one with [NewAgent] and functional options:
//
//	agent := agentframework.NewAgent(client,
//	    agentframework.WithName("Weather Agent"),
//	    agentframework.WithInstructions("You are a helpful weather assistant."),
//	    agentframework.WithTools(weatherTool),
//	)
type Agent struct {
	id                 string
	name               string
	description        string
	client             ChatClient
	instructions       string
	tools              []Tool
	defaultOptions     *ChatOptions
	agentMiddleware    []AgentMiddleware
	chatMiddleware     []ChatMiddleware
	functionMiddleware []FunctionMiddleware
	invocationConfig   InvocationConfig
}

var _ Generator = (*Agent)(nil)

// AgentOption configures an [Agent] via [NewAgent].
type AgentOption func(*Agent)

// WithName sets the agent's display name.
func WithName(name string) AgentOption {
	return func(a *Agent) { a.name = name }
}

// WithDescription sets the agent's description.
func WithDescription(desc string) AgentOption {
	return func(a *Agent) { a.description = desc }
}

// WithInstructions sets the system instructions for the agent.
func WithInstructions(instructions string) AgentOption {
	return func(a *Agent) { a.instructions = instructions }
}

// WithTools adds tools to the agent's tool set.
func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithDefaultOptions sets default [ChatOptions] for all requests.
func WithDefaultOptions(opts *ChatOptions) AgentOption {
	return func(a *Agent) { a.defaultOptions = opts }
}

// WithAgentMiddleware adds [AgentMiddleware] to the agent pipeline.
func WithAgentMiddleware(mws ...AgentMiddleware) AgentOption {
	return func(a *Agent) { a.agentMiddleware = append(a.agentMiddleware, mws...) }
}

// WithChatMiddleware adds [ChatMiddleware] around every model round-trip
// the agent makes.
func WithChatMiddleware(mws ...ChatMiddleware) AgentOption {
	return func(a *Agent) { a.chatMiddleware = append(a.chatMiddleware, mws...) }
}

// WithFunctionMiddleware adds [FunctionMiddleware] to the tool invocation pipeline.
func WithFunctionMiddleware(mws ...FunctionMiddleware) AgentOption {
	return func(a *Agent) { a.functionMiddleware = append(a.functionMiddleware, mws...) }
}

// WithInvocationConfig overrides the default [InvocationConfig] for the
// tool-calling loop.
func WithInvocationConfig(cfg InvocationConfig) AgentOption {
	return func(a *Agent) { a.invocationConfig = cfg }
}

// NewAgent creates an Agent with the given [ChatClient] and options.
func NewAgent(client ChatClient, opts ...AgentOption) *Agent {
	a := &Agent{
		id:               uuid.NewString(),
		client:           client,
		invocationConfig: DefaultInvocationConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// Tools returns the agent's tool set.
func (a *Agent) Tools() []Tool { return a.tools }

// RunOption configures a single [Agent.Generate] call.
type RunOption func(*runConfig)

type runConfig struct {
	options *ChatOptions
}

// WithRunOptions provides per-call [ChatOptions] overrides.
func WithRunOptions(opts *ChatOptions) RunOption {
	return func(c *runConfig) { c.options = opts }
}

// Generate runs the agent over transcript and returns the turns it
// produced. The transcript itself is not modified.
func (a *Agent) Generate(ctx context.Context, transcript []Message, opts ...RunOption) (*AgentResponse, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := chainAgentMiddleware(a.handle, a.agentMiddleware...)
	return handler(ctx, &AgentRequest{
		Messages: transcript,
		Options:  cfg.options,
	})
}

func (a *Agent) prepareChatOptions(override *ChatOptions) *ChatOptions {
	opts := MergeChatOptions(a.defaultOptions, override)

	if len(a.tools) > 0 {
		opts.Tools = MergeChatOptions(&ChatOptions{Tools: a.tools}, &ChatOptions{Tools: opts.Tools}).Tools
	}

	if a.instructions != "" {
		if opts.Instructions != "" {
			opts.Instructions = a.instructions + "\n" + opts.Instructions
		} else {
			opts.Instructions = a.instructions
		}
	}
	return opts
}

func (a *Agent) handle(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
	opts := a.prepareChatOptions(req.Options)
	history := PrependInstructions(req.Messages, opts.Instructions)

	slog.DebugContext(ctx, "agent generate",
		"agent_id", a.id,
		"agent_name", a.name,
		"message_count", len(history),
		"tool_count", len(opts.Tools),
	)

	chat := ChainChatMiddleware(a.client.Response, a.chatMiddleware...)

	var (
		turns []Message
		steps int
		usage UsageDetails
	)
	if len(opts.Tools) > 0 {
		res, err := invokeFunctions(ctx, chat, history, opts, a.invocationConfig, a.functionMiddleware)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		turns, steps, usage = res.messages, res.steps, res.usage
	} else {
		resp, err := chat(ctx, history, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		turns, steps, usage = normalizeAssistant(resp.Messages), 1, resp.Usage
	}

	return &AgentResponse{
		Messages: turns,
		Text:     FinalText(turns),
		AgentID:  a.id,
		Steps:    steps,
		Usage:    usage,
	}, nil
}
