// Copyright (c) Microsoft. All rights reserved.

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/server"
)

// fakeAgent implements af.Generator with a configurable function and
// records the transcripts it was given.
type fakeAgent struct {
	mu    sync.Mutex
	seen  [][]af.Message
	reply func(transcript []af.Message) (*af.AgentResponse, error)
}

func (f *fakeAgent) Generate(ctx context.Context, transcript []af.Message, _ ...af.RunOption) (*af.AgentResponse, error) {
	f.mu.Lock()
	f.seen = append(f.seen, transcript)
	f.mu.Unlock()
	return f.reply(transcript)
}

func textReply(text string) func([]af.Message) (*af.AgentResponse, error) {
	return func([]af.Message) (*af.AgentResponse, error) {
		return &af.AgentResponse{Messages: []af.Message{af.NewAssistantMessage(text)}, Text: text}, nil
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func newServer(agent af.Generator) (*server.Server, *af.InMemoryStore) {
	store := af.NewInMemoryStore()
	return server.New(agent, store, quietLogger()), store
}

func postChat(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(&fakeAgent{reply: textReply("x")})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestChat_Success(t *testing.T) {
	text := "## Weather\nIt's **22°C** in \"Paris\" <sunny>"
	agent := &fakeAgent{reply: func(transcript []af.Message) (*af.AgentResponse, error) {
		return &af.AgentResponse{
			Messages: []af.Message{
				{Role: af.RoleAssistant, Content: af.Parts{&af.ToolCallPart{ToolCallID: "c1", ToolName: "weatherTool", Args: json.RawMessage(`{"location":"Paris"}`)}}},
				af.NewToolMessage(&af.ToolResultPart{ToolCallID: "c1", ToolName: "weatherTool", Result: map[string]any{"temperature": 22}}),
				af.NewAssistantMessage(text),
			},
			Text: text,
		}, nil
	}}
	srv, store := newServer(agent)

	rec := postChat(t, srv, `{"messages":[{"role":"user","content":"Weather in Paris?"}]}`, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "chunked", rec.Header().Get("Transfer-Encoding"))
	assert.Equal(t, `0:"## Weather\nIt's **22°C** in \"Paris\" <sunny>"`+"\n", rec.Body.String())

	sessionID := "session_dW5rbm93bnVua25v"
	transcript, err := store.Load(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, transcript, 4)
	assert.Equal(t, af.RoleUser, transcript[0].Role)
	assert.Equal(t, af.RoleAssistant, transcript[1].Role)
	assert.Equal(t, af.RoleTool, transcript[2].Role)
	assert.Equal(t, text, transcript[3].Text())

	require.Len(t, agent.seen, 1)
	assert.Len(t, agent.seen[0], 1)
}

func TestChat_HistoryAcrossRequests(t *testing.T) {
	agent := &fakeAgent{reply: textReply("ok")}
	srv, store := newServer(agent)
	headers := map[string]string{"User-Agent": "Mozilla/5.0", "X-Forwarded-For": "203.0.113.7"}

	for _, q := range []string{"hi", "weather in Oslo?"} {
		rec := postChat(t, srv, `{"messages":[{"role":"user","content":"`+q+`"}]}`, headers)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 4, store.Len("session_TW96aWxsYS81LjAy"))
	require.Len(t, agent.seen, 2)
	assert.Len(t, agent.seen[1], 3, "second exchange sees user, assistant, user")
}

func TestChat_FallbackAssistantMessage(t *testing.T) {
	agent := &fakeAgent{reply: func([]af.Message) (*af.AgentResponse, error) {
		return &af.AgentResponse{Text: "plain"}, nil
	}}
	srv, store := newServer(agent)

	rec := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	transcript, err := store.Load(context.Background(), "session_dW5rbm93bnVua25v")
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	assert.Equal(t, "plain", transcript[1].Text())
}

func TestChat_NonUserLatestNotAppended(t *testing.T) {
	agent := &fakeAgent{reply: textReply("ok")}
	srv, store := newServer(agent)

	rec := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, store.Len("session_dW5rbm93bnVua25v"))
	require.Len(t, agent.seen, 1)
	assert.Empty(t, agent.seen[0])
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantBody string
	}{
		{"missing messages", `{}`, "Messages are required"},
		{"empty messages", `{"messages":[]}`, "Messages are required"},
		{"null messages", `{"messages":null}`, "Messages are required"},
		{"malformed json", `{"messages":`, ""},
		{"tool message with text", `{"messages":[{"role":"tool","content":"hi"}]}`, ""},
		{"unknown role", `{"messages":[{"role":"robot","content":"hi"}]}`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			agent := &fakeAgent{reply: textReply("x")}
			srv, _ := newServer(agent)

			rec := postChat(t, srv, tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, rec.Body.String())
			}
			assert.Empty(t, agent.seen)
		})
	}
}

func TestChat_AgentError(t *testing.T) {
	agent := &fakeAgent{reply: func([]af.Message) (*af.AgentResponse, error) {
		return nil, errors.New("model unavailable")
	}}
	srv, store := newServer(agent)

	rec := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error: model unavailable", rec.Body.String())
	assert.Equal(t, 1, store.Len("session_dW5rbm93bnVua25v"), "user message is kept")
}

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestChat_AgentErrorWithoutMessage(t *testing.T) {
	agent := &fakeAgent{reply: func([]af.Message) (*af.AgentResponse, error) {
		return nil, emptyError{}
	}}
	srv, _ := newServer(agent)

	rec := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Sorry, I encountered an unexpected error while processing your request.", rec.Body.String())
}

func TestChat_AgentPanic(t *testing.T) {
	agent := &fakeAgent{reply: func([]af.Message) (*af.AgentResponse, error) {
		panic("nil map")
	}}
	srv, _ := newServer(agent)

	rec := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Sorry, I encountered an unexpected error while processing your request.", rec.Body.String())
}

func TestChat_ConcurrentSameSession(t *testing.T) {
	var mu sync.Mutex
	active, maxActive := 0, 0
	agent := &fakeAgent{reply: func([]af.Message) (*af.AgentResponse, error) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return &af.AgentResponse{Messages: []af.Message{af.NewAssistantMessage("ok")}, Text: "ok"}, nil
	}}
	srv, store := newServer(agent)

	const n = 6
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Equal(t, 2*n, store.Len("session_dW5rbm93bnVua25v"))

	// Every exchange saw the full history of the ones before it.
	lengths := make(map[int]bool)
	for _, tr := range agent.seen {
		lengths[len(tr)] = true
	}
	for i := 0; i < n; i++ {
		assert.True(t, lengths[2*i+1], "missing transcript of length %d", 2*i+1)
	}
}

func TestSessionRoute(t *testing.T) {
	srv, _ := newServer(&fakeAgent{reply: textReply("hello")})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/session_missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`, nil).Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/session_dW5rbm93bnVua25v", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SessionID string       `json:"sessionId"`
		Messages  []af.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session_dW5rbm93bnVua25v", body.SessionID)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "hello", body.Messages[1].Text())
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newServer(&fakeAgent{reply: textReply("x")})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSessionID(t *testing.T) {
	tests := []struct {
		ua, xff, want string
	}{
		{"", "", "session_dW5rbm93bnVua25v"},
		{"Mozilla/5.0", "203.0.113.7", "session_TW96aWxsYS81LjAy"},
		{"curl/8.4.0", "", "session_Y3VybC84LjQuMHVu"},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		r.Header.Del("User-Agent")
		if tc.ua != "" {
			r.Header.Set("User-Agent", tc.ua)
		}
		if tc.xff != "" {
			r.Header.Set("X-Forwarded-For", tc.xff)
		}
		assert.Equal(t, tc.want, server.SessionID(r))
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.Out = &buf
	log.SetFormatter(&logrus.JSONFormatter{})

	srv := server.New(&fakeAgent{reply: textReply("x")}, nil, log)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "/health", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
}
