// Copyright (c) Microsoft. All rights reserved.

// Package assistant wires the Weather Agent: its instructions, its tools and
// the activities workflow those tools run.
package assistant

import (
	"errors"
	"log/slog"

	"github.com/microsoft/weather-agent/go/activities"
	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/nearby"
	"github.com/microsoft/weather-agent/go/search"
	"github.com/microsoft/weather-agent/go/weather"
	"github.com/microsoft/weather-agent/go/workflow"
)

const (
	// AgentName is the Weather Agent's display name.
	AgentName = "Weather Agent"

	// DefaultModel is the chat model used when Config.Model is empty.
	DefaultModel = "gpt-4o-mini"

	// DefaultMaxSteps bounds the tool-calling loop per request.
	DefaultMaxSteps = 5
)

// Config holds the dependencies of the assistant. Client, Weather and Search
// are required.
type Config struct {
	Client   af.ChatClient
	Model    string
	MaxSteps int
	Weather  *weather.Client
	Search   *search.Client
	Logger   *slog.Logger
}

// Assistant is the Weather Agent plus the workflow it drives.
type Assistant struct {
	agent    *af.Agent
	workflow *workflow.Workflow
}

// New builds the Weather Agent from cfg.
func New(cfg Config) (*Assistant, error) {
	if cfg.Client == nil {
		return nil, errors.New("assistant: chat client is required")
	}
	if cfg.Weather == nil || cfg.Search == nil {
		return nil, errors.New("assistant: weather and search clients are required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	wf, err := activities.NewWorkflow(search.NewTool(cfg.Search))
	if err != nil {
		return nil, err
	}

	invocation := af.DefaultInvocationConfig()
	invocation.MaxSteps = cfg.MaxSteps

	agent := af.NewAgent(cfg.Client,
		af.WithName(AgentName),
		af.WithDescription("Provides current weather and weather-appropriate activity suggestions"),
		af.WithInstructions(Instructions),
		af.WithDefaultOptions(&af.ChatOptions{ModelID: cfg.Model}),
		af.WithTools(
			weather.NewTool(cfg.Weather),
			activities.NewTool(wf),
			nearby.NewTool(nearby.NewFinder(cfg.Client, cfg.Model)),
		),
		af.WithInvocationConfig(invocation),
		af.WithAgentMiddleware(af.LoggingMiddleware(cfg.Logger)),
		af.WithFunctionMiddleware(af.ToolLoggingMiddleware(cfg.Logger)),
		af.WithChatMiddleware(af.ChatLoggingMiddleware(cfg.Logger)),
	)

	return &Assistant{agent: agent, workflow: wf}, nil
}

// Agent returns the Weather Agent.
func (a *Assistant) Agent() *af.Agent { return a.agent }

// Workflow returns the activities workflow.
func (a *Assistant) Workflow() *workflow.Workflow { return a.workflow }
