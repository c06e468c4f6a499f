package workflow

import (
	"github.com/opsverity/verity/internal/correlate"
	"github.com/opsverity/verity/internal/dispatch"
	"github.com/opsverity/verity/internal/group"
	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/verdict"
)

// ExamineAction tells the worker how to examine one claim's evidence
type ExamineAction string

const (
	ActionReadScreenshot ExamineAction = "read-screenshot"
	ActionReadState      ExamineAction = "read-state"
	ActionSkip           ExamineAction = "skip"
)

// Examination is one per-claim evidence directive
type Examination struct {
	Claim       model.Claim   `json:"claim"`
	EvidenceRef string        `json:"evidence_ref,omitempty"`
	Action      ExamineAction `json:"action"`
	Reason      string        `json:"reason,omitempty"` // Why the claim is skipped, when it is
}

// VerdictRule states how per-claim outcomes reduce to the overall verdict
type VerdictRule struct {
	Blocking       model.SeveritySet `json:"-"`
	BlockingCSV    string            `json:"blocking"`
	FailureVerdict model.Verdict     `json:"failure_verdict"` // FAIL for gates, ISSUES for evidence reports
}

// Payload is the structured guidance one stage returns. The enumerated data
// fields are the binding contract; human-readable instructions are rendered
// from them by the render package and carry no authority of their own.
type Payload struct {
	Workflow string `json:"workflow"`
	Stage    int    `json:"stage"`
	Stages   int    `json:"stages"`
	Title    string `json:"title"`

	Notes []string `json:"notes,omitempty"` // Short stage-level remarks

	Claims       []model.Claim         `json:"claims,omitempty"`
	Correlations []correlate.Result    `json:"correlations,omitempty"`
	Examinations []Examination         `json:"examinations,omitempty"`
	Items        []model.WorkItem      `json:"items,omitempty"`
	Groups       group.Groups          `json:"groups,omitempty"`
	Dispatches   []dispatch.Descriptor `json:"dispatches,omitempty"`
	VerdictRule  *VerdictRule          `json:"verdict_rule,omitempty"`
	Verdict      *verdict.Result       `json:"verdict,omitempty"`

	// SchemaFields lists the required fields when a stage instructs the
	// worker to author a structured file
	Schema       string   `json:"schema,omitempty"`
	SchemaFields []string `json:"schema_fields,omitempty"`

	// Next is the invocation for the following stage, empty at the
	// terminal stage
	Next string `json:"next"`
}
