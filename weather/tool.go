// Copyright (c) Microsoft. All rights reserved.

package weather

import (
	"context"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// ToolName is the name the weather tool is exposed under.
const ToolName = "weatherTool"

// Input is the weather tool's argument object.
type Input struct {
	Location string `json:"location" jsonschema:"description=City name,required"`
}

// NewTool exposes c.Lookup as an agent tool.
func NewTool(c *Client) af.Tool {
	return af.NewTypedTool(ToolName, "Get current weather for a location",
		func(ctx context.Context, in Input) (*Reading, error) {
			return c.Lookup(ctx, in.Location)
		})
}
