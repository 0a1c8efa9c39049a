// Copyright (c) Microsoft. All rights reserved.

// Command weather-agent runs the Weather Agent as a chat server or from the
// terminal, and inspects its evaluations.
//
// Usage with OpenAI:
//
//	export OPENAI_API_KEY=sk-...
//	export TAVILY_API_KEY=tvly-...
//	weather-agent serve
//
// Usage with Azure AI Foundry:
//
//	export AZURE_FOUNDRY_ENDPOINT=https://<project>.services.ai.azure.com/openai/deployments/<deployment>
//	export AZURE_FOUNDRY_KEY=<your-key>   # optional, Entra ID is used without it
//	weather-agent chat
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microsoft/weather-agent/go/internal/config"
	"github.com/microsoft/weather-agent/go/internal/logging"
)

var version = "dev"

// app carries the settings shared by all commands. It is filled in by the
// root command before any subcommand runs.
type app struct {
	envFiles  []string
	logLevel  string
	logFormat string

	cfg *config.Config
	log *logrus.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "weather-agent",
		Short: "Weather assistant with activity suggestions",
		Long: `Weather Agent answers questions about current weather, suggests
activities that suit it and proposes nearby cities worth a trip.

  weather-agent serve                      # chat endpoint on :3000
  weather-agent chat                       # interactive terminal chat
  weather-agent weather "Lisbon"           # current conditions
  weather-agent experiments find           # Braintrust experiments`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	flags.StringVar(&a.logFormat, "log-format", "", "log format text|json, overrides LOG_FORMAT")

	root.AddCommand(
		newServeCmd(a),
		newChatCmd(a),
		newAskCmd(a),
		newWeatherCmd(a),
		newActivitiesCmd(a),
		newExperimentsCmd(a),
		newEvalCmd(a),
		newDatasetCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	a.cfg = cfg

	// The server logs to stdout; terminal commands keep stdout for answers.
	if cmd.Name() == "serve" {
		a.log = logging.New(cfg.LogLevel, cfg.LogFormat)
	} else {
		a.log = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	}
	slog.SetDefault(logging.NewSlogLogger(a.log))
	return nil
}
