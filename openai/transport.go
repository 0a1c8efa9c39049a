// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	cognitiveScope = "https://cognitiveservices.azure.com/.default"
)

// transport is the HTTP seam between the client and the API.
type transport interface {
	do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

type httpTransport struct {
	client          *http.Client
	baseURL         string
	apiKey          string
	org             string
	headers         map[string]string
	azureCredential azcore.TokenCredential
}

func newHTTPTransport(apiKey string, opts *clientConfig) *httpTransport {
	t := &httpTransport{
		client:          opts.httpClient,
		baseURL:         opts.baseURL,
		apiKey:          apiKey,
		org:             opts.organization,
		headers:         opts.headers,
		azureCredential: opts.azureCredential,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.baseURL == "" {
		t.baseURL = defaultBaseURL
	}
	return t
}

func (t *httpTransport) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	req, err := t.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if err := t.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &af.ServiceError{Service: "openai", Message: err.Error(), Err: af.ErrService}
	}
	if id := requestID(resp.Header); id != "" {
		slog.DebugContext(ctx, "openai response", "status", resp.StatusCode, "request_id", id)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseErrorResponse(resp)
	}
	return resp, nil
}

func (t *httpTransport) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.org != "" {
		req.Header.Set("OpenAI-Organization", t.org)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// authorize sets the Authorization header. An Entra credential wins over
// keys; an "api-key" or Authorization custom header is left as is.
func (t *httpTransport) authorize(ctx context.Context, req *http.Request) error {
	if t.azureCredential != nil {
		token, err := t.azureCredential.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{cognitiveScope},
		})
		if err != nil {
			return fmt.Errorf("%w: get azure token: %v", af.ErrAuth, err)
		}
		slog.DebugContext(ctx, "using entra token", "expires_on", token.ExpiresOn)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		return nil
	}
	if req.Header.Get("api-key") != "" || req.Header.Get("Authorization") != "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	return nil
}

func requestID(h http.Header) string {
	if id := h.Get("x-request-id"); id != "" {
		return id
	}
	return h.Get("apim-request-id")
}

// apiError is the error envelope shared by OpenAI and Azure OpenAI. Azure
// reports content filtering either as the top-level code or in innererror.
type apiError struct {
	Error struct {
		Message    string `json:"message"`
		Type       string `json:"type"`
		Code       any    `json:"code"`
		InnerError *struct {
			Code string `json:"code"`
		} `json:"innererror,omitempty"`
	} `json:"error"`
}

func (e *apiError) code() string {
	switch c := e.Error.Code.(type) {
	case string:
		return c
	case float64:
		return fmt.Sprint(c)
	default:
		return ""
	}
}

func (e *apiError) contentFiltered() bool {
	if e.code() == "content_filter" {
		return true
	}
	return e.Error.InnerError != nil && e.Error.InnerError.Code == "ResponsibleAIPolicyViolation"
}

// parseErrorResponse reads an error response body and returns a
// [af.ServiceError] wrapping the matching sentinel.
func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	svcErr := &af.ServiceError{
		Service:    "openai",
		StatusCode: resp.StatusCode,
		Message:    msg,
		Code:       apiErr.code(),
		Err:        af.ErrService,
	}
	switch {
	case apiErr.contentFiltered():
		svcErr.Err = af.ErrContentFilter
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		svcErr.Err = af.ErrAuth
	case resp.StatusCode == http.StatusBadRequest:
		svcErr.Err = af.ErrInvalidRequest
	}
	return svcErr
}
