// Copyright (c) Microsoft. All rights reserved.

// Package activities suggests things to do in a city given its current
// weather, by turning the weather into a web search and reshaping the hits.
package activities

import (
	"context"
	"fmt"
	"strings"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/search"
	"github.com/microsoft/weather-agent/go/workflow"
)

// WorkflowID identifies the activities workflow.
const WorkflowID = "weather-activities-workflow"

// Step IDs in execution order.
const (
	StepGenerateQuery  = "generate-search-query"
	StepMapSearchInput = "map-search-input"
	StepSearch         = search.ToolName
	StepMapFormatInput = "map-format-input"
	StepFormatOutput   = "format-output"
)

// searchMaxResults is how many hits the workflow asks the search for.
const searchMaxResults = 8

// Input is what the workflow starts from.
type Input struct {
	City    string `json:"city" jsonschema:"description=Name of the city,required"`
	Weather string `json:"weather" jsonschema:"description=Current weather conditions,required"`
}

// Suggestion is one activity derived from a search hit.
type Suggestion struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	RelevanceScore *float64 `json:"relevanceScore,omitempty"`
}

// Output is the workflow's final value.
type Output struct {
	City        string       `json:"city"`
	Weather     string       `json:"weather"`
	Activities  []Suggestion `json:"activities"`
	SearchQuery string       `json:"searchQuery"`
}

// query is the output of the query-generation step. It carries the original
// city and weather forward for the formatting step.
type query struct {
	Query           string `json:"query"`
	Location        string `json:"location,omitempty"`
	MaxResults      int    `json:"max_results,omitempty"`
	OriginalCity    string `json:"originalCity"`
	OriginalWeather string `json:"originalWeather"`
}

type formatInput struct {
	Results         []search.Result
	Query           string
	OriginalCity    string
	OriginalWeather string
}

// SearchQuery picks a search query for city based on keywords in weather.
// Keyword groups are checked in a fixed priority order.
func SearchQuery(city, weather string) string {
	w := strings.ToLower(weather)
	containsAny := func(words ...string) bool {
		for _, word := range words {
			if strings.Contains(w, word) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("rain", "storm"):
		return "indoor activities things to do rainy day " + city
	case containsAny("snow", "cold"):
		return "winter activities things to do cold weather " + city
	case containsAny("hot", "sunny", "clear"):
		return "outdoor activities summer things to do sunny weather " + city
	case containsAny("cloudy", "overcast"):
		return "things to do activities " + city + " any weather"
	default:
		return fmt.Sprintf("things to do activities %s %s", city, weather)
	}
}

// NewWorkflow builds the activities workflow around searchTool, which must
// accept [search.Request] arguments and return a [search.Response].
func NewWorkflow(searchTool af.Tool) (*workflow.Workflow, error) {
	wf, err := workflow.New(WorkflowID,
		workflow.Transform(StepGenerateQuery, generateQuery),
		workflow.Map(StepMapSearchInput, func(_ context.Context, q query, _ workflow.Results) (search.Request, error) {
			return search.Request{Query: q.Query, Location: q.Location, MaxResults: q.MaxResults}, nil
		}),
		workflow.ToolStep[*search.Response](StepSearch, searchTool),
		workflow.Map(StepMapFormatInput, func(_ context.Context, r *search.Response, prior workflow.Results) (formatInput, error) {
			q, err := workflow.Output[query](prior, StepGenerateQuery)
			if err != nil {
				return formatInput{}, err
			}
			return formatInput{
				Results:         r.Results,
				Query:           r.Query,
				OriginalCity:    q.OriginalCity,
				OriginalWeather: q.OriginalWeather,
			}, nil
		}),
		workflow.Transform(StepFormatOutput, formatOutput),
	)
	if err != nil {
		return nil, err
	}
	return wf.WithDescription("Find weather-appropriate activities for a city based on current weather conditions"), nil
}

func generateQuery(_ context.Context, in Input) (query, error) {
	return query{
		Query:           SearchQuery(in.City, in.Weather),
		Location:        in.City,
		MaxResults:      searchMaxResults,
		OriginalCity:    in.City,
		OriginalWeather: in.Weather,
	}, nil
}

func formatOutput(_ context.Context, in formatInput) (*Output, error) {
	acts := make([]Suggestion, 0, len(in.Results))
	for _, r := range in.Results {
		acts = append(acts, Suggestion{
			Title:          r.Title,
			Description:    r.Content,
			URL:            r.URL,
			RelevanceScore: r.Score,
		})
	}
	return &Output{
		City:        in.OriginalCity,
		Weather:     in.OriginalWeather,
		Activities:  acts,
		SearchQuery: in.Query,
	}, nil
}
