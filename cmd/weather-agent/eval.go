// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/braintrust"
	"github.com/microsoft/weather-agent/go/evals"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		dataset      string
		fromHosted   bool
		datasetName  string
		project      string
		structure    bool
		faithfulness bool
		output       string
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the Weather Agent over a dataset and score the answers",
		Long: `Run every record of a dataset through the agent and score the answers
with toolCallCheck. --structure adds StructureCheck and --faithfulness adds
Faithfulness. Records come from a local JSON or YAML file, or from the
Braintrust dataset named by --dataset-name with --from-braintrust.`,
		Example: `  weather-agent eval -d evals/dataset.json --structure
  weather-agent eval --from-braintrust --faithfulness -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			var (
				records []evals.Record
				err     error
			)
			if fromHosted {
				records, err = a.hostedRecords(cmd.Context(), project, datasetName)
			} else {
				records, err = evals.LoadDataset(dataset)
			}
			if err != nil {
				return err
			}
			asst, err := a.newAssistant()
			if err != nil {
				return err
			}

			scorers := []evals.Scorer{evals.ToolCallCheck()}
			if structure || faithfulness {
				client, err := a.newChatClient()
				if err != nil {
					return err
				}
				if structure {
					scorers = append(scorers, evals.NewStructureCheck(client, ""))
				}
				if faithfulness {
					scorers = append(scorers, evals.NewFaithfulness(client, ""))
				}
			}

			runner := &evals.Runner{Agent: asst.Agent(), Scorers: scorers}
			report, err := runner.Run(cmd.Context(), records)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != outputText {
				return writeStructured(out, output, report)
			}
			printEvalReport(out, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset file (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&fromHosted, "from-braintrust", false, "read records from the Braintrust dataset instead of a file")
	cmd.Flags().StringVar(&datasetName, "dataset-name", evals.DefaultDatasetName, "Braintrust dataset name")
	cmd.Flags().StringVar(&project, "project", "", "project name, overrides BRAINTRUST_PROJECT_NAME")
	cmd.Flags().BoolVar(&structure, "structure", false, "also grade answer layout with an LLM classifier")
	cmd.Flags().BoolVar(&faithfulness, "faithfulness", false, "also grade answers against recorded activity descriptions")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	cmd.MarkFlagsOneRequired("dataset", "from-braintrust")
	cmd.MarkFlagsMutuallyExclusive("dataset", "from-braintrust")
	return cmd
}

// projectName resolves a --project flag against BRAINTRUST_PROJECT_NAME.
func (a *app) projectName(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if a.cfg.BraintrustProject == "" {
		return "", af.Errorf(af.ErrConfiguration, "BRAINTRUST_PROJECT_NAME environment variable is required")
	}
	return a.cfg.BraintrustProject, nil
}

// hostedRecords reads every row of a Braintrust dataset as eval records.
func (a *app) hostedRecords(ctx context.Context, project, name string) ([]evals.Record, error) {
	project, err := a.projectName(project)
	if err != nil {
		return nil, err
	}
	bt, err := a.newBraintrustClient()
	if err != nil {
		return nil, err
	}
	proj, err := bt.FindProject(ctx, project)
	if err != nil {
		return nil, err
	}
	ds, err := bt.FindDataset(ctx, proj.ID, name)
	if err != nil {
		return nil, err
	}
	rows, err := bt.FetchDataset(ctx, ds.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", ds.Name, err)
	}
	return recordsFromRows(rows)
}

// recordsFromRows converts dataset rows to records. String inputs and
// expectations are used as is; other JSON values are kept as compact JSON
// text.
func recordsFromRows(rows []braintrust.Event) ([]evals.Record, error) {
	records := make([]evals.Record, 0, len(rows))
	for i, row := range rows {
		r := evals.Record{
			Input:    jsonText(row.Input),
			Expected: jsonText(row.Expected),
			Metadata: row.Metadata,
		}
		if r.Input == "" {
			return nil, fmt.Errorf("dataset row %d (%s): input is required", i, row.ID)
		}
		records = append(records, r)
	}
	return records, nil
}

func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func printEvalReport(w io.Writer, r *evals.Report) {
	for i, res := range r.Results {
		fmt.Fprintf(w, "%s %s\n", heading(fmt.Sprintf("#%d", i+1)), braintrust.Truncate(res.Input, 80))
		if res.Error != "" {
			fmt.Fprintf(w, "  %s %s\n", failMark, res.Error)
			continue
		}
		if len(res.Tools) > 0 {
			fmt.Fprintf(w, "  %s\n", dim(fmt.Sprintf("tools: %v", res.Tools)))
		}
		for _, s := range res.Scores {
			mark := okMark
			if s.Score < 1 {
				mark = failMark
			}
			fmt.Fprintf(w, "  %s %s %.2f\n", mark, s.Name, s.Score)
		}
	}

	names := make([]string, 0, len(r.Summary))
	for name := range r.Summary {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Summary"))
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %.2f\n", name, r.Summary[name])
	}
}

func newDatasetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage the Braintrust evaluation dataset",
	}

	var (
		file    string
		name    string
		project string
	)
	push := &cobra.Command{
		Use:   "push",
		Short: "Upload a local dataset to Braintrust",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := evals.LoadDataset(file)
			if err != nil {
				return err
			}
			project, err := a.projectName(project)
			if err != nil {
				return err
			}
			bt, err := a.newBraintrustClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			proj, err := bt.EnsureProject(ctx, project)
			if err != nil {
				return err
			}
			ds, err := bt.CreateDataset(ctx, proj.ID, name)
			if err != nil {
				return err
			}

			ids, err := bt.InsertDataset(ctx, ds.ID, datasetRows(records))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s inserted %d records into %s\n", okMark, len(ids), ds.Name)
			return nil
		},
	}
	push.Flags().StringVarP(&file, "file", "f", "", "dataset file (.json, .yaml or .yml)")
	push.Flags().StringVar(&name, "name", evals.DefaultDatasetName, "dataset name")
	push.Flags().StringVar(&project, "project", "", "project name, overrides BRAINTRUST_PROJECT_NAME")
	_ = push.MarkFlagRequired("file")
	cmd.AddCommand(push)

	return cmd
}

// datasetRows prepares records for upload. An empty expectation is sent as
// null and a record without metadata is tagged with its index.
func datasetRows(records []evals.Record) []braintrust.DatasetRecord {
	rows := make([]braintrust.DatasetRecord, len(records))
	for i, r := range records {
		row := braintrust.DatasetRecord{Input: r.Input, Metadata: r.Metadata}
		if r.Expected != "" {
			row.Expected = r.Expected
		}
		if len(row.Metadata) == 0 {
			row.Metadata = map[string]any{"recordIndex": i}
		}
		rows[i] = row
	}
	return rows
}
