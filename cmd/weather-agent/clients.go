// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/assistant"
	"github.com/microsoft/weather-agent/go/braintrust"
	"github.com/microsoft/weather-agent/go/internal/config"
	"github.com/microsoft/weather-agent/go/internal/logging"
	"github.com/microsoft/weather-agent/go/openai"
	"github.com/microsoft/weather-agent/go/search"
	"github.com/microsoft/weather-agent/go/weather"
)

// newChatClient creates an OpenAI-compatible client, choosing Azure AI
// Foundry over direct OpenAI when its endpoint is configured.
func (a *app) newChatClient() (*openai.Client, error) {
	cfg := a.cfg
	if cfg.FoundryEndpoint != "" {
		opts := []openai.Option{
			openai.WithBaseURL(cfg.FoundryEndpoint),
			openai.WithModel(cfg.ChatModel()),
		}
		log := a.log.WithField("endpoint", cfg.FoundryEndpoint)

		if cfg.FoundryKey == "" {
			cred, err := azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return nil, fmt.Errorf("create Azure credential: %w", err)
			}
			log.Debug("using Azure AI Foundry with Entra ID authentication")
			return openai.New("", append(opts, openai.WithAzureCredential(cred))...), nil
		}

		log.Debug("using Azure AI Foundry with API key authentication")
		return openai.New(cfg.FoundryKey, append(opts,
			openai.WithHeaders(map[string]string{"api-key": cfg.FoundryKey}),
		)...), nil
	}

	if cfg.OpenAIKey == "" {
		return nil, af.Errorf(af.ErrConfiguration, "set OPENAI_API_KEY or AZURE_FOUNDRY_ENDPOINT")
	}
	opts := []openai.Option{openai.WithModel(cfg.ChatModel())}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return openai.New(cfg.OpenAIKey, opts...), nil
}

func newWeatherClient(cfg *config.Config) *weather.Client {
	return weather.NewClient(
		weather.WithGeocodingURL(cfg.GeocodingURL),
		weather.WithForecastURL(cfg.ForecastURL),
	)
}

func newSearchClient(cfg *config.Config) *search.Client {
	var opts []search.Option
	if cfg.TavilyBaseURL != "" {
		opts = append(opts, search.WithBaseURL(cfg.TavilyBaseURL))
	}
	return search.NewClient(cfg.TavilyKey, opts...)
}

func (a *app) newBraintrustClient() (*braintrust.Client, error) {
	return braintrust.NewClient(a.cfg.BraintrustKey, braintrust.WithBaseURL(a.cfg.BraintrustURL))
}

// newAssistant builds the Weather Agent from the loaded configuration.
func (a *app) newAssistant() (*assistant.Assistant, error) {
	client, err := a.newChatClient()
	if err != nil {
		return nil, err
	}
	return assistant.New(assistant.Config{
		Client:   client,
		Model:    a.cfg.ChatModel(),
		MaxSteps: a.cfg.MaxSteps,
		Weather:  newWeatherClient(a.cfg),
		Search:   newSearchClient(a.cfg),
		Logger:   logging.NewSlogLogger(a.log),
	})
}
