// Copyright (c) Microsoft. All rights reserved.

package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// StepKind identifies the variant of a [Step].
type StepKind string

const (
	KindTransform StepKind = "transform"
	KindMap       StepKind = "map"
	KindTool      StepKind = "tool"
)

// Step is a single stage of a [Workflow]. Construct steps with [Transform],
// [Map] or [ToolStep].
type Step interface {
	ID() string
	Kind() StepKind
	run(ctx context.Context, in any, prior Results) (any, error)
}

// Results holds the outputs of the steps that have completed so far, keyed
// by step ID.
type Results map[string]any

// Output returns the output of an earlier step as T.
func Output[T any](r Results, stepID string) (T, error) {
	var zero T
	v, ok := r[stepID]
	if !ok {
		return zero, fmt.Errorf("step %q has no output", stepID)
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("step %q output is %T, want %T", stepID, v, zero)
	}
	return out, nil
}

type transformStep struct {
	id string
	fn func(ctx context.Context, in any) (any, error)
}

func (s *transformStep) ID() string     { return s.id }
func (s *transformStep) Kind() StepKind { return KindTransform }

func (s *transformStep) run(ctx context.Context, in any, _ Results) (any, error) {
	return s.fn(ctx, in)
}

// Transform returns a step that applies fn to the previous output.
func Transform[In, Out any](id string, fn func(ctx context.Context, in In) (Out, error)) Step {
	return &transformStep{id: id, fn: func(ctx context.Context, v any) (any, error) {
		in, err := coerce[In](v)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}}
}

type mapStep struct {
	id string
	fn func(ctx context.Context, in any, prior Results) (any, error)
}

func (s *mapStep) ID() string     { return s.id }
func (s *mapStep) Kind() StepKind { return KindMap }

func (s *mapStep) run(ctx context.Context, in any, prior Results) (any, error) {
	return s.fn(ctx, in, prior)
}

// Map returns a step that reshapes the previous output, optionally pulling
// in outputs of earlier steps through prior.
func Map[In, Out any](id string, fn func(ctx context.Context, in In, prior Results) (Out, error)) Step {
	return &mapStep{id: id, fn: func(ctx context.Context, v any, prior Results) (any, error) {
		in, err := coerce[In](v)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in, prior)
	}}
}

type toolStep struct {
	id     string
	tool   af.Tool
	decode func(any) (any, error)
}

func (s *toolStep) ID() string     { return s.id }
func (s *toolStep) Kind() StepKind { return KindTool }

func (s *toolStep) run(ctx context.Context, in any, _ Results) (any, error) {
	args, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode %s arguments: %w", s.tool.Name(), err)
	}
	out, err := s.tool.Invoke(ctx, args)
	if err != nil {
		return nil, err
	}
	return s.decode(out)
}

// ToolStep returns a step that invokes tool with the previous output as its
// arguments and yields the tool's result as Out.
func ToolStep[Out any](id string, tool af.Tool) Step {
	return &toolStep{id: id, tool: tool, decode: func(v any) (any, error) {
		return coerce[Out](v)
	}}
}

// coerce converts v to T directly when it already has that type, and through
// a JSON round trip otherwise.
func coerce[T any](v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("encode %T: %w", v, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("convert %T to %T: %w", v, out, err)
	}
	return out, nil
}
