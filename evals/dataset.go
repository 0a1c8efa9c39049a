// Copyright (c) Microsoft. All rights reserved.

// Package evals runs the Weather Agent over a dataset of prompts and scores
// each answer.
package evals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDatasetName is the Braintrust dataset the records are uploaded to.
const DefaultDatasetName = "WeatherActivityDataset"

// Record is one dataset row. Metadata["tool_info"] holds the messages of a
// reference run and is where the expected tool names come from.
type Record struct {
	Input    string         `json:"input" yaml:"input"`
	Expected string         `json:"expected,omitempty" yaml:"expected,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// LoadDataset reads records from a JSON or YAML file. Files ending in .yaml
// or .yml are decoded as YAML, everything else as JSON.
func LoadDataset(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON array of records.
func ParseJSON(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, validate(records)
}

// ParseYAML decodes a YAML sequence of records.
func ParseYAML(data []byte) ([]Record, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, validate(records)
}

func validate(records []Record) error {
	for i, r := range records {
		if strings.TrimSpace(r.Input) == "" {
			return fmt.Errorf("dataset record %d: input is required", i)
		}
	}
	return nil
}
