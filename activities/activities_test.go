// Copyright (c) Microsoft. All rights reserved.

package activities_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/weather-agent/go/activities"
	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/search"
	"github.com/microsoft/weather-agent/go/workflow"
)

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		weather string
		want    string
	}{
		{"Slight rain", "indoor activities things to do rainy day Paris"},
		{"Thunderstorm with slight hail", "indoor activities things to do rainy day Paris"},
		{"Heavy snow fall", "winter activities things to do cold weather Paris"},
		{"Cold and windy", "winter activities things to do cold weather Paris"},
		{"HOT", "outdoor activities summer things to do sunny weather Paris"},
		{"Clear sky", "outdoor activities summer things to do sunny weather Paris"},
		{"Partly cloudy", "things to do activities Paris any weather"},
		{"Overcast", "things to do activities Paris any weather"},
		{"Foggy", "things to do activities Paris Foggy"},
		// rain outranks snow, snow outranks clear.
		{"rain and snow", "indoor activities things to do rainy day Paris"},
		{"snow clearing", "winter activities things to do cold weather Paris"},
	}
	for _, tc := range tests {
		t.Run(tc.weather, func(t *testing.T) {
			assert.Equal(t, tc.want, activities.SearchQuery("Paris", tc.weather))
		})
	}
}

// fakeTavily answers every search with the given results and records the
// request bodies.
func fakeTavily(t *testing.T, status int, results []map[string]any) (*search.Client, *[]map[string]any) {
	t.Helper()
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))
		bodies = append(bodies, body)

		w.WriteHeader(status)
		if status >= 400 {
			_ = json.NewEncoder(w).Encode(map[string]any{"detail": map[string]any{"error": "quota exceeded"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"query": body["query"], "results": results})
	}))
	t.Cleanup(srv.Close)
	return search.NewClient("tvly-test", search.WithBaseURL(srv.URL), search.WithHTTPClient(srv.Client())), &bodies
}

func TestWorkflow(t *testing.T) {
	client, bodies := fakeTavily(t, http.StatusOK, []map[string]any{
		{"title": "Louvre", "url": "https://louvre.fr", "content": "World's largest art museum", "score": 0.91},
		{"title": "Passage couverts", "url": "https://example.com/passages", "content": "Covered arcades"},
	})

	wf, err := activities.NewWorkflow(search.NewTool(client))
	require.NoError(t, err)
	assert.Equal(t, "weather-activities-workflow", wf.ID())
	assert.Equal(t, []string{
		"generate-search-query", "map-search-input", "tavily-search", "map-format-input", "format-output",
	}, wf.StepIDs())

	res, err := wf.CreateRun().Start(context.Background(), activities.Input{City: "Paris", Weather: "Moderate rain"})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusSuccess, res.Status, "err: %v", res.Err)

	out, err := workflow.ResultAs[*activities.Output](res)
	require.NoError(t, err)

	assert.Equal(t, "Paris", out.City)
	assert.Equal(t, "Moderate rain", out.Weather)
	assert.Equal(t, "indoor activities things to do rainy day Paris in Paris", out.SearchQuery)
	require.Len(t, out.Activities, 2)
	assert.Equal(t, "Louvre", out.Activities[0].Title)
	assert.Equal(t, "World's largest art museum", out.Activities[0].Description)
	assert.Equal(t, "https://louvre.fr", out.Activities[0].URL)
	require.NotNil(t, out.Activities[0].RelevanceScore)
	assert.InDelta(t, 0.91, *out.Activities[0].RelevanceScore, 1e-9)
	assert.Nil(t, out.Activities[1].RelevanceScore)

	require.Len(t, *bodies, 1)
	assert.Equal(t, float64(8), (*bodies)[0]["max_results"])
	assert.Equal(t, "indoor activities things to do rainy day Paris in Paris", (*bodies)[0]["query"])
}

func TestTool(t *testing.T) {
	client, _ := fakeTavily(t, http.StatusOK, []map[string]any{
		{"title": "Golden Gate Park", "url": "https://goldengatepark.com", "content": "Gardens and trails", "score": 0.8},
	})
	wf, err := activities.NewWorkflow(search.NewTool(client))
	require.NoError(t, err)

	tool := activities.NewTool(wf)
	assert.Equal(t, "weatherActivitiesTool", tool.Name())

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"city":"San Francisco","weather":"Clear sky"}`))
	require.NoError(t, err)
	to := out.(*activities.ToolOutput)
	assert.Equal(t, "outdoor activities summer things to do sunny weather San Francisco in San Francisco", to.SearchQuery)
	require.Len(t, to.Activities, 1)
	assert.Equal(t, "Gardens and trails", to.Activities[0].Description)
}

func TestTool_SearchFailure(t *testing.T) {
	client, _ := fakeTavily(t, http.StatusTooManyRequests, nil)
	wf, err := activities.NewWorkflow(search.NewTool(client))
	require.NoError(t, err)

	_, err = activities.Suggest(context.Background(), wf, activities.Input{City: "Oslo", Weather: "Snow grains"})
	require.Error(t, err)
	assert.ErrorIs(t, err, af.ErrWorkflowFailed)
	assert.ErrorIs(t, err, af.ErrSearch)
	assert.Contains(t, err.Error(), "Workflow execution failed with status: failed: Tavily search failed: ")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestTool_MissingSearchKey(t *testing.T) {
	wf, err := activities.NewWorkflow(search.NewTool(search.NewClient("")))
	require.NoError(t, err)

	_, err = activities.Suggest(context.Background(), wf, activities.Input{City: "Oslo", Weather: "Clear sky"})
	assert.ErrorIs(t, err, af.ErrWorkflowFailed)
	assert.ErrorIs(t, err, af.ErrConfiguration)
	assert.Equal(t,
		"Workflow execution failed with status: failed: TAVILY_API_KEY environment variable is required",
		err.Error())
}
