// Package runner is the caller-side harness that executes dispatch
// descriptors in parallel. The core coordinator only produces descriptors;
// this package plays the external orchestrator role the core assumes:
// it fans groups out over a worker pool and owns the join, making sure
// every item reaches an outcome before aggregation.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/opsverity/verity/internal/dispatch"
)

// Executor runs one dispatch descriptor to completion. Implementations
// are expected to update the persisted batch as a side effect; the runner
// itself never mutates item state.
type Executor interface {
	Execute(ctx context.Context, d dispatch.Descriptor) error
}

// ExecutorFunc adapts a function to the Executor interface
type ExecutorFunc func(ctx context.Context, d dispatch.Descriptor) error

// Execute implements Executor
func (f ExecutorFunc) Execute(ctx context.Context, d dispatch.Descriptor) error {
	return f(ctx, d)
}

// DispatchJob runs one descriptor through an executor under rate limiting
type DispatchJob struct {
	Descriptor dispatch.Descriptor
	Executor   Executor
	Limiter    *Limiter
}

// Execute executes the dispatch job
func (j *DispatchJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Descriptor.Role); err != nil {
			return &DispatchResult{Descriptor: j.Descriptor, Error: err}
		}
	}
	return &DispatchResult{
		Descriptor: j.Descriptor,
		Error:      j.Executor.Execute(ctx, j.Descriptor),
	}
}

// DispatchResult is the outcome of executing one group
type DispatchResult struct {
	Descriptor dispatch.Descriptor
	Error      error
}

// GetError returns the error from the dispatch result
func (r *DispatchResult) GetError() error {
	return r.Error
}

// Runner executes descriptor sets concurrently
type Runner struct {
	executor Executor
	workers  int
	limiter  *Limiter
}

// NewRunner creates a runner with the given executor and concurrency
func NewRunner(executor Executor, workers int, dispatchesPerSecond float64, burst int) *Runner {
	return &Runner{
		executor: executor,
		workers:  workers,
		limiter:  NewLimiter(dispatchesPerSecond, burst),
	}
}

// Run executes all descriptors in parallel and returns one result per
// group. It does not inspect item statuses: a group whose executor
// returned nil but left items TODO surfaces later as an incomplete batch
// at aggregation.
func (r *Runner) Run(ctx context.Context, descriptors []dispatch.Descriptor) []*DispatchResult {
	if len(descriptors) == 0 {
		return []*DispatchResult{}
	}

	pool := NewPool(r.workers)
	pool.Start()

	for _, d := range descriptors {
		pool.Submit(&DispatchJob{
			Descriptor: d,
			Executor:   r.executor,
			Limiter:    r.limiter,
		})
	}

	results := pool.Wait()

	dispatchResults := make([]*DispatchResult, len(results))
	for i, result := range results {
		dispatchResults[i] = result.(*DispatchResult)
	}
	return dispatchResults
}

// CommandExecutor shells out to an external worker command, appending the
// descriptor's reproducible invocation. The command is expected to verify
// its items and update the persisted batch before exiting.
type CommandExecutor struct {
	Command []string // e.g. {"claude", "--agent"} or a wrapper script
}

// Execute implements Executor
func (e *CommandExecutor) Execute(ctx context.Context, d dispatch.Descriptor) error {
	if len(e.Command) == 0 {
		return fmt.Errorf("no executor command configured")
	}

	args := append([]string{}, e.Command[1:]...)
	args = append(args, d.Role, d.Invocation.String())

	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("group %s: %w: %s", d.GroupKey, err, strings.TrimSpace(string(out)))
	}
	return nil
}
