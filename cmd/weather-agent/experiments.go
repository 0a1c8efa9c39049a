// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/microsoft/weather-agent/go/braintrust"
)

func newExperimentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "Inspect Braintrust experiments of the Weather Agent",
		Long: `Inspect evaluation experiments stored in Braintrust.
Requires BRAINTRUST_API_KEY and BRAINTRUST_PROJECT_NAME.`,
	}

	var project string
	cmd.PersistentFlags().StringVar(&project, "project", "", "project name, overrides BRAINTRUST_PROJECT_NAME")
	projectName := func() string {
		if project != "" {
			return project
		}
		return a.cfg.BraintrustProject
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "find",
		Short: "List experiments and flag the weather-related ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bt, err := a.newBraintrustClient()
			if err != nil {
				return err
			}
			report, err := bt.ScanProject(cmd.Context(), projectName())
			if err != nil {
				return err
			}
			printScanReport(cmd.OutOrStdout(), report)
			return nil
		},
	})

	var name string
	check := &cobra.Command{
		Use:   "check",
		Short: "Show the records and instructions of one experiment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bt, err := a.newBraintrustClient()
			if err != nil {
				return err
			}
			exp, events, err := bt.CheckExperiment(cmd.Context(), projectName(), name)
			if err != nil {
				return err
			}
			printExperimentRecords(cmd.OutOrStdout(), exp, events)
			return nil
		},
	}
	check.Flags().StringVar(&name, "name", braintrust.DefaultEvalExperiment, "experiment name")
	cmd.AddCommand(check)

	return cmd
}

func printScanReport(w io.Writer, r *braintrust.ScanReport) {
	fmt.Fprintf(w, "Project: %s %s\n", heading(r.Project.Name), dim("("+r.Project.ID+")"))
	fmt.Fprintf(w, "Found %d experiments\n\n", len(r.Scans))

	for _, s := range r.Scans {
		fmt.Fprintf(w, "Experiment: %s\n", heading(s.Experiment.Name))
		fmt.Fprintf(w, "  ID: %s\n", s.Experiment.ID)
		if len(s.Experiment.Tags) > 0 {
			fmt.Fprintf(w, "  Tags: %s\n", strings.Join(s.Experiment.Tags, ", "))
		}

		switch s.Status {
		case braintrust.ScanFetchFailed:
			fmt.Fprintf(w, "  %s Could not fetch records: %v\n", failMark, s.Err)
		case braintrust.ScanNoRecords:
			fmt.Fprintf(w, "  %s No records found\n", failMark)
		case braintrust.ScanNotWeather:
			fmt.Fprintf(w, "  %s Not weather-related\n", failMark)
		case braintrust.ScanWeather:
			fmt.Fprintf(w, "  %s Weather-related\n", okMark)
			printEventSummary(w, s.First)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Weather-related experiments: %d of %d\n", len(r.Weather()), len(r.Scans))
}

func printEventSummary(w io.Writer, e *braintrust.Event) {
	fmt.Fprintf(w, "    Input: %s\n", braintrust.Truncate(string(e.Input), 200))
	if keys := e.MetadataKeys(); len(keys) > 0 {
		fmt.Fprintf(w, "    Metadata keys: %s\n", strings.Join(keys, ", "))
	}
	if instr := e.Instructions(); instr != "" {
		fmt.Fprintf(w, "    Instructions: %s\n", braintrust.Truncate(instr, 200))
	}
	if e.IsWeatherEvaluation() {
		fmt.Fprintf(w, "    %s\n", heading("This appears to be a weather agent evaluation!"))
	}
}

func printExperimentRecords(w io.Writer, exp *braintrust.Experiment, events []braintrust.Event) {
	fmt.Fprintf(w, "Experiment: %s %s\n", heading(exp.Name), dim("("+exp.ID+")"))
	fmt.Fprintf(w, "Fetched %d records\n", len(events))

	for i := range events {
		e := &events[i]
		fmt.Fprintf(w, "\nRecord %d:\n", i+1)
		fmt.Fprintf(w, "  Input type: %s\n", e.InputKind())
		if role, content, ok := e.FirstInputMessage(); ok {
			fmt.Fprintf(w, "  First message role: %s\n", role)
			fmt.Fprintf(w, "  Content preview: %s\n", braintrust.Truncate(string(content), 100))
		} else if s, ok := e.InputString(); ok {
			fmt.Fprintf(w, "  Input: %s\n", braintrust.Truncate(s, 100))
		}

		if len(e.Metadata) > 0 {
			meta, _ := json.MarshalIndent(e.Metadata, "  ", "  ")
			fmt.Fprintf(w, "  Metadata: %s\n", meta)
		}
		if instr := e.Instructions(); instr != "" {
			fmt.Fprintf(w, "  %s FOUND INSTRUCTIONS: %s\n", okMark, braintrust.Truncate(instr, 200))
		} else {
			fmt.Fprintf(w, "  %s No instructions recorded\n", failMark)
		}
	}
}
