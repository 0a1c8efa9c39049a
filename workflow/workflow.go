// Copyright (c) Microsoft. All rights reserved.

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is the state of a [Run].
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ErrRunStarted is returned when Start is called on a run that has already
// been started.
var ErrRunStarted = errors.New("workflow run already started")

// Workflow is an immutable, ordered list of steps.
type Workflow struct {
	id          string
	description string
	steps       []Step
}

// New builds a workflow. Step IDs must be non-empty and unique.
func New(id string, steps ...Step) (*Workflow, error) {
	if id == "" {
		return nil, errors.New("workflow id is required")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("workflow %q has no steps", id)
	}
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		if s == nil || s.ID() == "" {
			return nil, fmt.Errorf("workflow %q: step %d has no id", id, i)
		}
		if seen[s.ID()] {
			return nil, fmt.Errorf("workflow %q: duplicate step id %q", id, s.ID())
		}
		seen[s.ID()] = true
	}
	return &Workflow{id: id, steps: steps}, nil
}

// WithDescription returns wf with its description set.
func (wf *Workflow) WithDescription(desc string) *Workflow {
	cp := *wf
	cp.description = desc
	return &cp
}

// ID returns the workflow identifier passed to [New].
func (wf *Workflow) ID() string { return wf.id }

// Description returns the text set by [Workflow.WithDescription].
func (wf *Workflow) Description() string { return wf.description }

// StepIDs lists the step IDs in execution order.
func (wf *Workflow) StepIDs() []string {
	ids := make([]string, len(wf.steps))
	for i, s := range wf.steps {
		ids[i] = s.ID()
	}
	return ids
}

// CreateRun mints a new pending run with a fresh ULID.
func (wf *Workflow) CreateRun() *Run {
	return &Run{id: ulid.Make().String(), wf: wf, status: StatusPending}
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	ID       string        `json:"id"`
	Kind     StepKind      `json:"kind"`
	Status   Status        `json:"status"`
	Output   any           `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunResult is the final state of a run. Err and FailedStep are set only
// when Status is [StatusFailed].
type RunResult struct {
	RunID      string       `json:"runId"`
	WorkflowID string       `json:"workflowId"`
	Status     Status       `json:"status"`
	Result     any          `json:"result,omitempty"`
	FailedStep string       `json:"failedStep,omitempty"`
	Err        error        `json:"-"`
	Steps      []StepResult `json:"steps"`
}

// ResultAs returns the run's final output as T.
func ResultAs[T any](r *RunResult) (T, error) {
	var zero T
	if r.Status != StatusSuccess {
		return zero, fmt.Errorf("run %s has status %s", r.RunID, r.Status)
	}
	out, ok := r.Result.(T)
	if !ok {
		return zero, fmt.Errorf("run %s result is %T, want %T", r.RunID, r.Result, zero)
	}
	return out, nil
}

// Run is a single execution of a [Workflow]. A run can be started once.
type Run struct {
	id string
	wf *Workflow

	mu     sync.Mutex
	status Status
}

// ID returns the run identifier, a ULID assigned by [Workflow.CreateRun].
func (r *Run) ID() string { return r.id }

// Status reports the run's current state.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Start executes the workflow's steps in order, feeding each step the
// previous step's output. Step failures are reported on the returned
// RunResult, not as an error; the error is non-nil only if the run was
// already started.
func (r *Run) Start(ctx context.Context, input any) (*RunResult, error) {
	r.mu.Lock()
	if r.status != StatusPending {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRunStarted, r.id)
	}
	r.status = StatusRunning
	r.mu.Unlock()

	res := &RunResult{RunID: r.id, WorkflowID: r.wf.id, Status: StatusRunning}
	prior := make(Results, len(r.wf.steps))
	current := input

	log := slog.With("workflow", r.wf.id, "run_id", r.id)
	log.DebugContext(ctx, "workflow run started")

	for _, step := range r.wf.steps {
		sr := StepResult{ID: step.ID(), Kind: step.Kind()}
		start := time.Now()

		out, err := r.runStep(ctx, step, current, prior)
		sr.Duration = time.Since(start)

		if err != nil {
			sr.Status = StatusFailed
			sr.Error = err.Error()
			res.Steps = append(res.Steps, sr)
			res.Status = StatusFailed
			res.FailedStep = step.ID()
			res.Err = err
			log.WarnContext(ctx, "workflow step failed", "step", step.ID(), "error", err)
			r.finish(StatusFailed)
			return res, nil
		}

		sr.Status = StatusSuccess
		sr.Output = out
		res.Steps = append(res.Steps, sr)
		prior[step.ID()] = out
		current = out

		log.DebugContext(ctx, "workflow step completed", "step", step.ID(), "duration", sr.Duration)
	}

	res.Status = StatusSuccess
	res.Result = current
	r.finish(StatusSuccess)
	log.DebugContext(ctx, "workflow run finished", "status", res.Status)
	return res, nil
}

func (r *Run) runStep(ctx context.Context, step Step, in any, prior Results) (out any, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("step %s panicked: %v", step.ID(), p)
		}
	}()
	return step.run(ctx, in, prior)
}

func (r *Run) finish(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}
