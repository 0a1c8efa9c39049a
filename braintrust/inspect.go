// Copyright (c) Microsoft. All rights reserved.

package braintrust

import (
	"context"
	"fmt"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// Sampling limits used when inspecting experiments.
const (
	ScanSampleSize  = 3
	CheckSampleSize = 10
)

// DefaultEvalExperiment is the experiment inspected by [Client.CheckExperiment]
// when no name is given.
const DefaultEvalExperiment = "MastraAppTest [experimentName=weather-eval-2025-07-28]"

// ScanStatus summarizes what a sampled experiment contained.
type ScanStatus string

const (
	ScanWeather     ScanStatus = "weather"
	ScanNotWeather  ScanStatus = "not-weather"
	ScanNoRecords   ScanStatus = "no-records"
	ScanFetchFailed ScanStatus = "fetch-failed"
)

// ExperimentScan is the outcome of sampling one experiment.
type ExperimentScan struct {
	Experiment Experiment
	Status     ScanStatus
	// First is the first sampled event, when there was one.
	First *Event
	// Err is set when Status is ScanFetchFailed.
	Err error
}

// ScanReport lists every experiment of a project with its scan outcome.
type ScanReport struct {
	Project Project
	Scans   []ExperimentScan
}

// Weather returns the scans that look like weather agent runs.
func (r *ScanReport) Weather() []ExperimentScan {
	var out []ExperimentScan
	for _, s := range r.Scans {
		if s.Status == ScanWeather {
			out = append(out, s)
		}
	}
	return out
}

// ScanProject samples the first few events of every experiment in the named
// project and classifies each experiment by whether it mentions weather.
// A fetch failure for one experiment is recorded in its scan and does not
// stop the others.
func (c *Client) ScanProject(ctx context.Context, projectName string) (*ScanReport, error) {
	if projectName == "" {
		return nil, af.Errorf(af.ErrConfiguration, "BRAINTRUST_PROJECT_NAME environment variable is required")
	}
	project, err := c.FindProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	exps, err := c.ListExperiments(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}

	report := &ScanReport{Project: *project}
	for _, exp := range exps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scan := ExperimentScan{Experiment: exp}
		events, err := c.FetchExperiment(ctx, exp.ID, ScanSampleSize)
		switch {
		case err != nil:
			scan.Status, scan.Err = ScanFetchFailed, err
		case len(events) == 0:
			scan.Status = ScanNoRecords
		default:
			scan.First = &events[0]
			scan.Status = ScanNotWeather
			if scan.First.MentionsWeather() {
				scan.Status = ScanWeather
			}
		}
		report.Scans = append(report.Scans, scan)
	}
	return report, nil
}

// CheckExperiment fetches up to [CheckSampleSize] events of the named
// experiment. An empty experimentName selects [DefaultEvalExperiment].
func (c *Client) CheckExperiment(ctx context.Context, projectName, experimentName string) (*Experiment, []Event, error) {
	if projectName == "" {
		return nil, nil, af.Errorf(af.ErrConfiguration, "BRAINTRUST_PROJECT_NAME environment variable is required")
	}
	if experimentName == "" {
		experimentName = DefaultEvalExperiment
	}
	project, err := c.FindProject(ctx, projectName)
	if err != nil {
		return nil, nil, err
	}
	exp, err := c.FindExperiment(ctx, project.ID, experimentName)
	if err != nil {
		return nil, nil, err
	}
	events, err := c.FetchExperiment(ctx, exp.ID, CheckSampleSize)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch experiment %s: %w", exp.Name, err)
	}
	return exp, events, nil
}
