// Package workflow implements the step-indexed guidance state machine that
// drives an external worker through an ordered sequence of stages.
//
// A machine is a fixed, linearly ordered sequence of named stages. Each
// stage is a pure function of (stage index, context): it performs no I/O
// itself and returns a structured payload instructing the external actor
// what to do and how to re-invoke the machine at the next stage. The
// terminal stage returns an empty next invocation.
package workflow

import (
	"errors"
	"fmt"
)

// ErrNoBrief signals that a stage requires the claim brief but the context
// carries none. Fatal for the invocation; the caller must author the brief
// first.
var ErrNoBrief = errors.New("no brief available")

// ErrNoBatch signals that a stage requires persisted batch state but none
// exists yet. Fatal for the invocation; the caller must re-run the
// generation stages.
var ErrNoBatch = errors.New("no persisted batch state")

// InvalidStageError reports a stage index outside the machine's range.
// It is the machine's only first-class error condition: reported, never
// retried automatically.
type InvalidStageError struct {
	Workflow string
	Stage    int
	Max      int
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("invalid step %d for workflow %s: valid range 1-%d", e.Stage, e.Workflow, e.Max)
}

// StageError wraps a failure inside a valid stage, keeping the stage
// coordinates for reporting
type StageError struct {
	Workflow string
	Stage    int
	Name     string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow %s step %d (%s): %v", e.Workflow, e.Stage, e.Name, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Stage is one named step of a machine. Run receives the accumulated
// context and fills in the stage-specific payload sections; the machine
// owns stage numbering and the next-invocation pointer.
type Stage struct {
	Name string
	Run  func(ctx *Context, p *Payload) error
}

// Machine is an ordered sequence of stages invoked one step at a time
type Machine struct {
	name   string
	stages []Stage
}

// New creates a machine with the given name and stages
func New(name string, stages ...Stage) *Machine {
	return &Machine{name: name, stages: stages}
}

// Compose concatenates machines into one: the earlier machines' terminal
// stages remap onto the next machine's first stage automatically, because
// the combined machine owns stage numbering. Used when one workflow's tail
// is another workflow's entire body.
func Compose(name string, machines ...*Machine) *Machine {
	var stages []Stage
	for _, m := range machines {
		stages = append(stages, m.stages...)
	}
	return New(name, stages...)
}

// Name returns the workflow name used in invocations
func (m *Machine) Name() string { return m.name }

// Len returns the number of stages
func (m *Machine) Len() int { return len(m.stages) }

// StageName returns the name of the 1-indexed stage, or ""
func (m *Machine) StageName(stage int) string {
	if stage < 1 || stage > len(m.stages) {
		return ""
	}
	return m.stages[stage-1].Name
}

// Guide runs the 1-indexed stage against the context and returns its
// payload. The payload's Next field carries the invocation for the
// following stage, or "" at the terminal stage.
func (m *Machine) Guide(stage int, ctx *Context) (*Payload, error) {
	if stage < 1 || stage > len(m.stages) {
		return nil, &InvalidStageError{Workflow: m.name, Stage: stage, Max: len(m.stages)}
	}

	s := m.stages[stage-1]
	p := &Payload{
		Workflow: m.name,
		Stage:    stage,
		Stages:   len(m.stages),
		Title:    s.Name,
	}

	if err := s.Run(ctx, p); err != nil {
		return nil, &StageError{Workflow: m.name, Stage: stage, Name: s.Name, Err: err}
	}

	if stage < len(m.stages) {
		p.Next = ctx.Invocation(m.name, stage+1).String()
	}
	return p, nil
}
