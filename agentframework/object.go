// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateObject asks the model for a JSON value shaped like T.
//
// The schema generated from T is sent as the response format, and the model
// output is validated against the same schema before decoding. Output that
// is not valid JSON or violates the schema fails with [ErrSchemaViolation].
func GenerateObject[T any](ctx context.Context, client ChatClient, name, prompt string, opts *ChatOptions) (T, error) {
	var zero T
	schema := GenerateSchema[T]()

	req := MergeChatOptions(opts, &ChatOptions{
		ResponseFormat: &ResponseFormat{Name: name, Schema: schema},
	})
	req.Tools = nil

	messages := PrependInstructions([]Message{NewUserMessage(prompt)}, req.Instructions)
	resp, err := client.Response(ctx, messages, req)
	if err != nil {
		return zero, fmt.Errorf("generate %s: %w", name, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return zero, fmt.Errorf("generate %s: %w: empty output", name, ErrSchemaViolation)
	}
	if err := ValidateJSON(schema, json.RawMessage(text)); err != nil {
		return zero, fmt.Errorf("generate %s: %w", name, err)
	}

	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return zero, fmt.Errorf("generate %s: %w: %v", name, ErrSchemaViolation, err)
	}
	return out, nil
}
