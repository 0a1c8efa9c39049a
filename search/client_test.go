// Copyright (c) Microsoft. All rights reserved.

package search_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/search"
)

func newServer(t *testing.T, handler func(t *testing.T, body map[string]any) (int, any)) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var seen []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))
		seen = append(seen, body)

		status, resp := handler(t, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestSearch(t *testing.T) {
	srv, seen := newServer(t, func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"query": body["query"],
			"results": []map[string]any{
				{"title": "Louvre", "url": "https://louvre.fr", "content": "Museum", "score": 0.92},
				{"title": "Orsay", "url": "https://musee-orsay.fr", "content": "Impressionists"},
			},
		}
	})
	c := search.NewClient("tvly-test", search.WithBaseURL(srv.URL), search.WithHTTPClient(srv.Client()))

	resp, err := c.Search(context.Background(), search.Request{Query: "indoor activities", Location: "Paris", MaxResults: 8})
	require.NoError(t, err)

	assert.Equal(t, "indoor activities in Paris", resp.Query)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Louvre", resp.Results[0].Title)
	require.NotNil(t, resp.Results[0].Score)
	assert.InDelta(t, 0.92, *resp.Results[0].Score, 1e-9)
	assert.Nil(t, resp.Results[1].Score)

	require.Len(t, *seen, 1)
	assert.Equal(t, map[string]any{
		"query":               "indoor activities in Paris",
		"search_depth":        "basic",
		"max_results":         float64(8),
		"include_answer":      false,
		"include_images":      false,
		"include_raw_content": false,
	}, (*seen)[0])
}

func TestSearch_Defaults(t *testing.T) {
	srv, seen := newServer(t, func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"results": []any{}}
	})
	c := search.NewClient("tvly-test", search.WithBaseURL(srv.URL), search.WithHTTPClient(srv.Client()))

	resp, err := c.Search(context.Background(), search.Request{Query: "museums"})
	require.NoError(t, err)
	assert.Equal(t, "museums", resp.Query)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)
	assert.Equal(t, float64(search.DefaultMaxResults), (*seen)[0]["max_results"])
}

func TestSearch_MissingKey(t *testing.T) {
	c := search.NewClient("")
	_, err := c.Search(context.Background(), search.Request{Query: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, af.ErrConfiguration)
	assert.Equal(t, "TAVILY_API_KEY environment variable is required", err.Error())
}

func TestSearch_ProviderFailure(t *testing.T) {
	srv, _ := newServer(t, func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusUnauthorized, map[string]any{"detail": map[string]any{"error": "Unauthorized: missing or invalid API key."}}
	})
	c := search.NewClient("tvly-test", search.WithBaseURL(srv.URL), search.WithHTTPClient(srv.Client()))

	_, err := c.Search(context.Background(), search.Request{Query: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, af.ErrSearch)
	assert.Contains(t, err.Error(), "Tavily search failed: ")
	assert.Contains(t, err.Error(), "Unauthorized: missing or invalid API key.")

	var svcErr *af.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestTool(t *testing.T) {
	srv, seen := newServer(t, func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"results": []map[string]any{{"title": "a", "url": "u", "content": "c"}}}
	})
	tool := search.NewTool(search.NewClient("tvly-test", search.WithBaseURL(srv.URL), search.WithHTTPClient(srv.Client())))
	assert.Equal(t, "tavily-search", tool.Name())

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"parks","location":"Oslo","max_results":3}`))
	require.NoError(t, err)
	resp := out.(*search.Response)
	assert.Equal(t, "parks in Oslo", resp.Query)
	assert.Equal(t, float64(3), (*seen)[0]["max_results"])

	_, err = tool.Invoke(context.Background(), json.RawMessage(`{"location":"Oslo"}`))
	assert.ErrorIs(t, err, af.ErrToolExecution)
}
