// Copyright (c) Microsoft. All rights reserved.

// Package config loads process settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr          = ":3000"
	DefaultModel         = "gpt-4o-mini"
	DefaultMaxSteps      = 5
	DefaultBraintrustURL = "https://api.braintrust.dev"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config holds every setting the commands read from the environment.
type Config struct {
	// Addr is the listen address for the chat server (ADDR, or ":"+PORT).
	Addr string

	// OpenAI (OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL).
	OpenAIKey     string
	OpenAIBaseURL string
	Model         string

	// Azure AI Foundry (AZURE_FOUNDRY_ENDPOINT, AZURE_FOUNDRY_KEY,
	// AZURE_FOUNDRY_MODEL). When the endpoint is set it takes precedence
	// over OpenAI; without a key, Entra credentials are used.
	FoundryEndpoint string
	FoundryKey      string
	FoundryModel    string

	// Tavily (TAVILY_API_KEY, TAVILY_BASE_URL).
	TavilyKey     string
	TavilyBaseURL string

	// Open-Meteo (OPEN_METEO_GEOCODING_URL, OPEN_METEO_FORECAST_URL).
	GeocodingURL string
	ForecastURL  string

	// Braintrust (BRAINTRUST_API_KEY, BRAINTRUST_PROJECT_NAME, BRAINTRUST_API_URL).
	BraintrustKey     string
	BraintrustProject string
	BraintrustURL     string

	// MaxSteps bounds the agent's tool loop (AGENT_MAX_STEPS).
	MaxSteps int

	// LOG_LEVEL and LOG_FORMAT.
	LogLevel  string
	LogFormat string
}

// Load reads the given .env files (".env" when none are named) into the
// process environment, then builds a Config from it. Missing files are
// skipped; variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:              getEnvDefault("ADDR", ""),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		Model:             getEnvDefault("OPENAI_MODEL", DefaultModel),
		FoundryEndpoint:   os.Getenv("AZURE_FOUNDRY_ENDPOINT"),
		FoundryKey:        os.Getenv("AZURE_FOUNDRY_KEY"),
		FoundryModel:      os.Getenv("AZURE_FOUNDRY_MODEL"),
		TavilyKey:         os.Getenv("TAVILY_API_KEY"),
		TavilyBaseURL:     os.Getenv("TAVILY_BASE_URL"),
		GeocodingURL:      os.Getenv("OPEN_METEO_GEOCODING_URL"),
		ForecastURL:       os.Getenv("OPEN_METEO_FORECAST_URL"),
		BraintrustKey:     os.Getenv("BRAINTRUST_API_KEY"),
		BraintrustProject: os.Getenv("BRAINTRUST_PROJECT_NAME"),
		BraintrustURL:     getEnvDefault("BRAINTRUST_API_URL", DefaultBraintrustURL),
		MaxSteps:          DefaultMaxSteps,
		LogLevel:          getEnvDefault("LOG_LEVEL", DefaultLogLevel),
		LogFormat:         getEnvDefault("LOG_FORMAT", DefaultLogFormat),
	}

	if cfg.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Addr = ":" + port
		} else {
			cfg.Addr = DefaultAddr
		}
	}

	if v := os.Getenv("AGENT_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("AGENT_MAX_STEPS must be a positive integer, got %q", v)
		}
		cfg.MaxSteps = n
	}
	return cfg, nil
}

// ChatModel returns the model to request: the Foundry deployment when
// Foundry is configured, else the OpenAI model.
func (c *Config) ChatModel() string {
	if c.FoundryEndpoint != "" && c.FoundryModel != "" {
		return c.FoundryModel
	}
	return c.Model
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
