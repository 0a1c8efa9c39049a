// Copyright (c) Microsoft. All rights reserved.

package search

import (
	"context"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// ToolName is the name the search tool is exposed under.
const ToolName = "tavily-search"

// NewTool exposes c.Search as an agent tool.
func NewTool(c *Client) af.Tool {
	return af.NewTypedTool(ToolName, "Search the web using Tavily for relevant information and activities",
		func(ctx context.Context, r Request) (*Response, error) {
			return c.Search(ctx, r)
		})
}
