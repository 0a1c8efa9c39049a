// Copyright (c) Microsoft. All rights reserved.

// Package nearby suggests cities within about an hour's drive of a location
// by asking a model for a schema-constrained answer.
package nearby

import (
	"context"
	"fmt"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// ToolName is the name the nearby-cities tool is exposed under.
const ToolName = "nearbyCitiesTool"

// DefaultModel is the model used when the Finder is not given one.
const DefaultModel = "gpt-4o-mini"

// City is one suggested nearby city.
type City struct {
	Name       string   `json:"name" jsonschema:"required"`
	Country    string   `json:"country,omitempty"`
	Region     string   `json:"region,omitempty"`
	Distance   *float64 `json:"distance,omitempty" jsonschema:"description=Approximate distance in kilometers,minimum=0"`
	Population *float64 `json:"population,omitempty" jsonschema:"minimum=0"`
}

// Result is the model's answer: the canonical name of the original city and
// exactly two nearby cities.
type Result struct {
	OriginalCity string `json:"originalCity" jsonschema:"required"`
	NearbyCities []City `json:"nearbyCities" jsonschema:"required,minItems=2,maxItems=2"`
}

// Finder asks a chat model for nearby cities.
type Finder struct {
	client af.ChatClient
	model  string
}

// NewFinder returns a Finder that generates with model, or [DefaultModel]
// when model is empty.
func NewFinder(client af.ChatClient, model string) *Finder {
	if model == "" {
		model = DefaultModel
	}
	return &Finder{client: client, model: model}
}

// Find returns two cities within roughly 60-80km of location. The answer is
// checked against the Result schema only; the geography is not verified.
func (f *Finder) Find(ctx context.Context, location string) (*Result, error) {
	res, err := af.GenerateObject[Result](ctx, f.client, "nearby_cities", prompt(location),
		&af.ChatOptions{ModelID: f.model})
	if err != nil {
		return nil, fmt.Errorf("nearby cities for %q: %w", location, err)
	}
	return &res, nil
}

func prompt(location string) string {
	return fmt.Sprintf(`You are a geography expert. Given the city %q, suggest 2 nearby cities that are within about an hour's drive (approximately 60-80km or 40-50 miles).

Requirements:
- Only include real cities that actually exist
- Focus on cities that are genuinely within driving distance
- Include a mix of larger and smaller cities/towns
- Provide approximate distances in kilometers
- Include the region/state/province if known
- Estimate population if you know it (can be approximate)
- Don't include the original city in the list
- Prefer well-known cities that people would actually visit

For the original city, use the most common/standard name for that location.

Example format:
- Name: "Springfield", Region: "Illinois", Distance: 45, Population: 116000
- Name: "Decatur", Region: "Illinois", Distance: 35, Population: 70000

Please provide realistic suggestions based on actual geography.`, location)
}

// Input is the nearby-cities tool's argument object.
type Input struct {
	Location string `json:"location" jsonschema:"description=Original city name to find nearby cities from,required"`
}

// NewTool exposes f.Find as an agent tool.
func NewTool(f *Finder) af.Tool {
	return af.NewTypedTool(ToolName, "Find nearby cities within an hour drive (approximately 60-80km) of a given location",
		func(ctx context.Context, in Input) (*Result, error) {
			return f.Find(ctx, in.Location)
		})
}
