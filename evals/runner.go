// Copyright (c) Microsoft. All rights reserved.

package evals

import (
	"context"
	"log/slog"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// Result is the evaluation of one record.
type Result struct {
	Input    string   `json:"input" yaml:"input"`
	Expected string   `json:"expected,omitempty" yaml:"expected,omitempty"`
	Output   string   `json:"output" yaml:"output"`
	Tools    []string `json:"tools" yaml:"tools"`
	Scores   []Score  `json:"scores" yaml:"scores"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the evaluation of a dataset. Summary holds the mean score of
// each scorer over the records it applied to.
type Report struct {
	Results []Result           `json:"results" yaml:"results"`
	Summary map[string]float64 `json:"summary" yaml:"summary"`
}

// Runner sends each record's input to the agent as a fresh conversation and
// applies every scorer to the outcome.
type Runner struct {
	Agent   af.Generator
	Scorers []Scorer
	Logger  *slog.Logger
}

// Run evaluates records in order. A record whose generation fails is
// reported with its error and no scores; scorer errors are logged and the
// scorer skipped. Run only fails when ctx is done.
func (r *Runner) Run(ctx context.Context, records []Record) (*Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := &Report{Summary: map[string]float64{}}
	counts := map[string]int{}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := Result{Input: rec.Input, Expected: rec.Expected, Tools: []string{}, Scores: []Score{}}

		sample, err := r.task(ctx, rec)
		if err != nil {
			logger.WarnContext(ctx, "eval task failed", "record", i, "error", err)
			res.Error = err.Error()
			report.Results = append(report.Results, res)
			continue
		}
		res.Output = sample.Output
		if names := af.ToolNames(sample.ToolInfo); names != nil {
			res.Tools = names
		}

		for _, sc := range r.Scorers {
			score, err := sc.Score(ctx, sample)
			if err != nil {
				logger.WarnContext(ctx, "scorer failed", "record", i, "scorer", sc.Name(), "error", err)
				continue
			}
			if score == nil {
				continue
			}
			res.Scores = append(res.Scores, *score)
			report.Summary[score.Name] += score.Score
			counts[score.Name]++
		}
		report.Results = append(report.Results, res)
	}

	for name, n := range counts {
		report.Summary[name] /= float64(n)
	}
	return report, nil
}

func (r *Runner) task(ctx context.Context, rec Record) (*Sample, error) {
	resp, err := r.Agent.Generate(ctx, []af.Message{af.NewUserMessage(rec.Input)})
	if err != nil {
		return nil, err
	}

	var toolInfo []af.Message
	for _, m := range resp.Messages {
		if m.Role == af.RoleTool || (m.Role == af.RoleAssistant && len(m.ToolCalls()) > 0) {
			toolInfo = append(toolInfo, m)
		}
	}

	output := resp.Text
	if output == "" {
		output = af.FinalText(resp.Messages)
	}
	return &Sample{Record: rec, Output: output, ToolInfo: toolInfo}, nil
}
