// Copyright (c) Microsoft. All rights reserved.

// Package search is a thin client for the Tavily web search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

const (
	DefaultBaseURL    = "https://api.tavily.com"
	DefaultMaxResults = 5
)

// Request is a web search. Location, when set, is appended to the query as
// "<query> in <location>".
type Request struct {
	Query      string `json:"query" jsonschema:"description=Search query to find relevant information,required"`
	Location   string `json:"location,omitempty" jsonschema:"description=Location to focus the search on"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum number of results to return,minimum=1"`
}

// Result is a single search hit.
type Result struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Content string   `json:"content"`
	Score   *float64 `json:"score,omitempty"`
}

// Response carries the hits and the query that was actually sent.
type Response struct {
	Results []Result `json:"results"`
	Query   string   `json:"query"`
}

// Client calls the Tavily search endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the Tavily API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client. An empty apiKey is accepted here and reported
// on the first Search call.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeImages     bool   `json:"include_images"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Query        string   `json:"query"`
	Results      []Result `json:"results"`
	ResponseTime float64  `json:"response_time"`
}

// EffectiveQuery returns the query text sent to the provider for r.
func (r Request) EffectiveQuery() string {
	if r.Location == "" {
		return r.Query
	}
	return r.Query + " in " + r.Location
}

// Search runs a basic-depth web search. Failures from the provider wrap
// [af.ErrSearch]; a missing API key wraps [af.ErrConfiguration].
func (c *Client) Search(ctx context.Context, r Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, af.Errorf(af.ErrConfiguration, "TAVILY_API_KEY environment variable is required")
	}

	maxResults := r.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	query := r.EffectiveQuery()

	slog.DebugContext(ctx, "tavily search", "query", query, "max_results", maxResults)

	tr, err := c.post(ctx, tavilyRequest{
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, &af.MessageError{
			Kind:    af.ErrSearch,
			Message: "Tavily search failed: " + err.Error(),
			Cause:   err,
		}
	}

	results := tr.Results
	if results == nil {
		results = []Result{}
	}
	return &Response{Results: results, Query: query}, nil
}

func (c *Client) post(ctx context.Context, body tavilyRequest) (*tavilyResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &af.ServiceError{
			Service:    "tavily",
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			Err:        af.ErrService,
		}
	}

	var tr tavilyResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("%w: decode tavily response: %v", af.ErrInvalidResponse, err)
	}
	return &tr, nil
}

// errorMessage extracts the message from a Tavily error body, which comes
// either as {"detail":{"error":"..."}} or {"error":"..."}.
func errorMessage(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		var detail struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body.Detail, &detail) == nil && detail.Error != "" {
			return detail.Error
		}
		var s string
		if json.Unmarshal(body.Detail, &s) == nil && s != "" {
			return s
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}
