// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrAgent is the base error for agent-related failures.
	ErrAgent = errors.New("agent error")

	// ErrExecution indicates a runtime failure during agent execution.
	ErrExecution = fmt.Errorf("%w: execution", ErrAgent)

	// ErrMaxSteps is returned when the tool loop exhausts its step budget
	// without the model producing a final answer.
	ErrMaxSteps = fmt.Errorf("%w: max steps reached", ErrExecution)

	// ErrBadRequest indicates caller input that cannot be processed, such as
	// an empty message list or a message whose parts do not match its role.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound indicates that a requested entity (for example a location)
	// could not be resolved.
	ErrNotFound = errors.New("not found")

	// ErrConfiguration indicates a missing or invalid required setting,
	// typically a credential.
	ErrConfiguration = errors.New("configuration error")

	// ErrService is the base error for backend service failures.
	ErrService = errors.New("service error")

	// ErrInvalidRequest indicates the request was rejected as malformed.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrService)

	// ErrInvalidResponse indicates the service returned an unexpected response.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrService)

	// ErrAuth indicates an authentication or authorization failure.
	ErrAuth = fmt.Errorf("%w: authentication", ErrService)

	// ErrContentFilter indicates the request was rejected by a content filter.
	ErrContentFilter = fmt.Errorf("%w: content filter", ErrService)

	// ErrSearch indicates the web search provider failed.
	ErrSearch = fmt.Errorf("%w: search", ErrService)

	// ErrWorkflowFailed indicates a workflow run ended with a non-success status.
	ErrWorkflowFailed = errors.New("workflow failed")

	// ErrTool is the base error for tool-related failures.
	ErrTool = errors.New("tool error")

	// ErrToolExecution indicates a failure during tool invocation.
	ErrToolExecution = fmt.Errorf("%w: execution", ErrTool)

	// ErrSchemaViolation indicates generated output did not match its schema.
	ErrSchemaViolation = fmt.Errorf("%w: schema violation", ErrInvalidResponse)
)

// ServiceError provides rich context for backend service failures.
// Use errors.As to extract it from a wrapped error chain.
type ServiceError struct {
	Service    string
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *ServiceError) Error() string {
	prefix := "service"
	if e.Service != "" {
		prefix = e.Service
	}
	if e.Code != "" {
		return fmt.Sprintf("%s error %d (%s): %s", prefix, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error %d: %s", prefix, e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ToolError provides context for tool invocation failures.
type ToolError struct {
	ToolName string
	Message  string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %s", e.ToolName, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }

// MessageError is an error whose text is shown to end users verbatim. It
// unwraps to its Kind sentinel and, when set, to the underlying Cause.
type MessageError struct {
	Kind    error
	Message string
	Cause   error
}

// Errorf returns a [MessageError] of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return &MessageError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *MessageError) Error() string { return e.Message }

func (e *MessageError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
