// Copyright (c) Microsoft. All rights reserved.

// Package braintrust wraps the Braintrust Go SDK with what the experiment
// inspection, dataset and eval commands need.
package braintrust

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	bt "github.com/braintrustdata/braintrust-go"
	"github.com/braintrustdata/braintrust-go/option"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// DefaultBaseURL is the public Braintrust API endpoint.
const DefaultBaseURL = "https://api.braintrust.dev"

// datasetPageSize is the number of rows requested per dataset fetch.
const datasetPageSize = 100

// Project is a Braintrust project.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Experiment is an experiment within a project.
type Experiment struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	Tags      []string `json:"tags,omitempty"`
}

// Dataset is a named collection of records within a project.
type Dataset struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

// Client calls the Braintrust API through the SDK, translating its errors
// into [af.ServiceError].
type Client struct {
	api  *bt.Client
	opts []option.RequestOption
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.opts = append(c.opts, option.WithBaseURL(strings.TrimRight(u, "/")+"/"))
		}
	}
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.opts = append(c.opts, option.WithHTTPClient(hc)) }
}

// WithMaxRetries sets how often the SDK retries failed requests.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.opts = append(c.opts, option.WithMaxRetries(n)) }
}

// NewClient creates a Client. It fails with [af.ErrConfiguration] when
// apiKey is empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, af.Errorf(af.ErrConfiguration, "BRAINTRUST_API_KEY environment variable is required")
	}
	c := &Client{opts: []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(DefaultBaseURL + "/"),
	}}
	for _, o := range opts {
		o(c)
	}
	c.api = bt.NewClient(c.opts...)
	return c, nil
}

// ListProjects returns the projects visible to the API key, narrowed to name
// when it is set.
func (c *Client) ListProjects(ctx context.Context, name string) ([]Project, error) {
	params := bt.ProjectListParams{}
	if name != "" {
		params.ProjectName = bt.F(name)
	}
	page, err := c.api.Projects.List(ctx, params)
	if err != nil {
		return nil, serviceError(err)
	}
	projects := make([]Project, 0, len(page.Objects))
	for _, p := range page.Objects {
		projects = append(projects, Project{ID: p.ID, Name: p.Name})
	}
	return projects, nil
}

// FindProject returns the project named name, or an error wrapping
// [af.ErrNotFound].
func (c *Client) FindProject(ctx context.Context, name string) (*Project, error) {
	projects, err := c.ListProjects(ctx, name)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: project %q", af.ErrNotFound, name)
}

// EnsureProject returns the project named name, creating it when missing.
func (c *Client) EnsureProject(ctx context.Context, name string) (*Project, error) {
	p, err := c.api.Projects.New(ctx, bt.ProjectNewParams{Name: bt.F(name)})
	if err != nil {
		return nil, serviceError(err)
	}
	return &Project{ID: p.ID, Name: p.Name}, nil
}

// ListExperiments returns the experiments of a project.
func (c *Client) ListExperiments(ctx context.Context, projectID string) ([]Experiment, error) {
	page, err := c.api.Experiments.List(ctx, bt.ExperimentListParams{ProjectID: bt.F(projectID)})
	if err != nil {
		return nil, serviceError(err)
	}
	exps := make([]Experiment, 0, len(page.Objects))
	for _, e := range page.Objects {
		exps = append(exps, Experiment{ID: e.ID, ProjectID: e.ProjectID, Name: e.Name, Tags: e.Tags})
	}
	return exps, nil
}

// FindExperiment returns the experiment named name in a project, or an error
// wrapping [af.ErrNotFound].
func (c *Client) FindExperiment(ctx context.Context, projectID, name string) (*Experiment, error) {
	exps, err := c.ListExperiments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range exps {
		if exps[i].Name == name {
			return &exps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: experiment %q", af.ErrNotFound, name)
}

type fetchRequest struct {
	Limit   int    `json:"limit"`
	Cursor  string `json:"cursor,omitempty"`
	Filters []any  `json:"filters"`
}

type fetchResponse struct {
	Events []Event `json:"events"`
	Cursor string  `json:"cursor"`
}

// FetchExperiment returns up to limit events recorded in an experiment.
func (c *Client) FetchExperiment(ctx context.Context, experimentID string, limit int) ([]Event, error) {
	resp, err := c.fetch(ctx, "v1/experiment/"+url.PathEscape(experimentID)+"/fetch", fetchRequest{Limit: limit, Filters: []any{}})
	if err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// CreateDataset registers a dataset in a project, returning the existing one
// if the name is taken.
func (c *Client) CreateDataset(ctx context.Context, projectID, name string) (*Dataset, error) {
	ds, err := c.api.Datasets.New(ctx, bt.DatasetNewParams{Name: bt.F(name), ProjectID: bt.F(projectID)})
	if err != nil {
		return nil, serviceError(err)
	}
	return &Dataset{ID: ds.ID, ProjectID: ds.ProjectID, Name: ds.Name}, nil
}

// FindDataset returns the dataset named name in a project, or an error
// wrapping [af.ErrNotFound].
func (c *Client) FindDataset(ctx context.Context, projectID, name string) (*Dataset, error) {
	page, err := c.api.Datasets.List(ctx, bt.DatasetListParams{ProjectID: bt.F(projectID), DatasetName: bt.F(name)})
	if err != nil {
		return nil, serviceError(err)
	}
	for _, ds := range page.Objects {
		if ds.Name == name {
			return &Dataset{ID: ds.ID, ProjectID: ds.ProjectID, Name: ds.Name}, nil
		}
	}
	return nil, fmt.Errorf("%w: dataset %q", af.ErrNotFound, name)
}

// FetchDataset returns every row of a dataset, following the fetch cursor
// until the server runs out of events.
func (c *Client) FetchDataset(ctx context.Context, datasetID string) ([]Event, error) {
	path := "v1/dataset/" + url.PathEscape(datasetID) + "/fetch"
	var (
		rows   []Event
		cursor string
	)
	for {
		resp, err := c.fetch(ctx, path, fetchRequest{Limit: datasetPageSize, Cursor: cursor, Filters: []any{}})
		if err != nil {
			return nil, err
		}
		rows = append(rows, resp.Events...)
		if resp.Cursor == "" || len(resp.Events) == 0 || resp.Cursor == cursor {
			return rows, nil
		}
		cursor = resp.Cursor
	}
}

// DatasetRecord is one row inserted into a dataset. A nil Expected is sent
// as null.
type DatasetRecord struct {
	Input    any            `json:"input"`
	Expected any            `json:"expected"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type insertResponse struct {
	RowIDs []string `json:"row_ids"`
}

// InsertDataset appends records to a dataset and returns their row IDs.
func (c *Client) InsertDataset(ctx context.Context, datasetID string, records []DatasetRecord) ([]string, error) {
	var resp insertResponse
	path := "v1/dataset/" + url.PathEscape(datasetID) + "/insert"
	if err := c.post(ctx, path, map[string]any{"events": records}, &resp); err != nil {
		return nil, err
	}
	return resp.RowIDs, nil
}

func (c *Client) fetch(ctx context.Context, path string, req fetchRequest) (*fetchResponse, error) {
	var resp fetchResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends body to an endpoint the SDK has no typed method for. The raw
// response is decoded here so events keep their original JSON.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var raw []byte
	if err := c.api.Post(ctx, path, body, &raw); err != nil {
		return serviceError(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode braintrust response: %v", af.ErrInvalidResponse, err)
	}
	return nil
}

// serviceError maps SDK failures onto the framework error model.
func serviceError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *bt.Error
	if !errors.As(err, &apiErr) {
		return &af.ServiceError{Service: "braintrust", Message: err.Error(), Err: af.ErrService}
	}
	svcErr := &af.ServiceError{
		Service:    "braintrust",
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Error(),
		Err:        af.ErrService,
	}
	if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
		svcErr.Err = af.ErrAuth
	}
	return svcErr
}
