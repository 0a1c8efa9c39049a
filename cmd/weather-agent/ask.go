// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/microsoft/weather-agent/go/activities"
	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/search"
	"github.com/microsoft/weather-agent/go/weather"
)

func newAskCmd(a *app) *cobra.Command {
	var showTools bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the Weather Agent a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asst, err := a.newAssistant()
			if err != nil {
				return err
			}
			prompt := strings.Join(args, " ")
			resp, err := asst.Agent().Generate(cmd.Context(), []af.Message{af.NewUserMessage(prompt)})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showTools {
				printToolTraffic(out, resp.Messages)
			}
			fmt.Fprintln(out, resp.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTools, "show-tools", false, "print tool calls and results before the answer")
	return cmd
}

// printToolTraffic lists the tool calls and results of a run in order.
func printToolTraffic(w io.Writer, msgs []af.Message) {
	for i := range msgs {
		for _, p := range msgs[i].Content {
			switch v := p.(type) {
			case *af.ToolCallPart:
				fmt.Fprintf(w, "%s %s(%s)\n", heading("→"), v.ToolName, string(v.Args))
			case *af.ToolResultPart:
				mark := okMark
				if v.IsError {
					mark = failMark
				}
				fmt.Fprintf(w, "%s %s %s\n", mark, v.ToolName, dim(fmt.Sprint(v.Result)))
			}
		}
	}
	fmt.Fprintln(w)
}

func newWeatherCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "weather <location>",
		Short: "Look up current weather for a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			reading, err := newWeatherClient(a.cfg).Lookup(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != outputText {
				return writeStructured(out, output, reading)
			}
			printReading(out, reading)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}

func printReading(w io.Writer, r *weather.Reading) {
	fmt.Fprintln(w, heading(r.Location))
	fmt.Fprintf(w, "  Conditions:  %s\n", r.Conditions)
	fmt.Fprintf(w, "  Temperature: %.1f°C (feels like %.1f°C)\n", r.Temperature, r.FeelsLike)
	fmt.Fprintf(w, "  Humidity:    %.0f%%\n", r.Humidity)
	fmt.Fprintf(w, "  Wind:        %.1f km/h, gusts %.1f km/h\n", r.WindSpeed, r.WindGust)
}

func newActivitiesCmd(a *app) *cobra.Command {
	var (
		in     activities.Input
		output string
	)
	cmd := &cobra.Command{
		Use:     "activities",
		Short:   "Run the activities workflow for a city and weather",
		Example: `  weather-agent activities --city Seattle --weather "light rain"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			wf, err := activities.NewWorkflow(search.NewTool(newSearchClient(a.cfg)))
			if err != nil {
				return err
			}
			res, err := activities.Suggest(cmd.Context(), wf, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != outputText {
				return writeStructured(out, output, res)
			}
			printActivities(out, in, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.City, "city", "", "city name")
	cmd.Flags().StringVar(&in.Weather, "weather", "", "current weather conditions")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("weather")
	return cmd
}

func printActivities(w io.Writer, in activities.Input, res *activities.ToolOutput) {
	fmt.Fprintf(w, "%s %s\n", heading("Activities in "+in.City), dim("("+in.Weather+")"))
	fmt.Fprintln(w, dim("query: "+res.SearchQuery))
	if len(res.Activities) == 0 {
		fmt.Fprintln(w, "  no suggestions found")
		return
	}
	for _, s := range res.Activities {
		fmt.Fprintf(w, "  - %s\n    %s\n", s.Title, dim(s.URL))
	}
}
