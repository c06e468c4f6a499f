package workflow

import (
	"errors"
	"fmt"

	"github.com/opsverity/verity/internal/model"
)

// ErrNoPlan signals that the authoring workflow was invoked without a plan
// file to draw acceptance criteria from
var ErrNoPlan = errors.New("no plan file specified")

// briefSchemaFields lists the required fields of every authored claim
var briefSchemaFields = []string{
	"step", "kind", "artifact", "condition", "failure_pattern", "search", "severity",
}

// NewAuthorMachine builds the brief authoring workflow: a quality-reviewer
// agent turns plan acceptance criteria and the artifact topology into a
// severity-tagged claim brief.
//
//	1. Read Plan Criteria - extract acceptance criteria for the milestone
//	2. Read Topology      - correlate criteria with artifact locations
//	3. Author Brief       - write the brief file with severity-tagged claims
func NewAuthorMachine() *Machine {
	return New("author",
		Stage{Name: "Read Plan Criteria", Run: authorReadPlan},
		Stage{Name: "Read Topology", Run: authorReadTopology},
		Stage{Name: "Author Brief", Run: authorWriteBrief},
	)
}

func authorReadPlan(ctx *Context, p *Payload) error {
	if ctx.PlanFile == "" {
		return ErrNoPlan
	}
	p.Notes = append(p.Notes,
		fmt.Sprintf("read %s and locate the milestone section matching %q", ctx.PlanFile, ctx.Milestone),
		"extract every acceptance criterion and requirement for that milestone",
		"plan criteria are the authoritative source of behavioral expectations; read the plan before any artifact",
	)
	return nil
}

func authorReadTopology(ctx *Context, p *Payload) error {
	if ctx.Topology == nil {
		// Defined degraded mode, not an error: claims get step "unknown",
		// no evidence refs, and conservative visual/MUST defaults.
		p.Notes = append(p.Notes,
			"topology not found; author claims from plan criteria only",
			fmt.Sprintf("set step=%q and omit artifact for every claim", model.StepUnknown),
			fmt.Sprintf("default kind=%s and severity=%s when uncertain", model.KindVisual, model.SeverityMust),
		)
		return nil
	}

	p.Notes = append(p.Notes,
		fmt.Sprintf("topology lists %d step(s); correlate each criterion with the step label it exercises", len(ctx.Topology.Steps)),
		"note criteria with no matching step: they get step=\"unknown\" and no artifact",
	)
	for _, step := range ctx.Topology.Steps {
		p.Notes = append(p.Notes, fmt.Sprintf("step %q: screenshot=%s state=%s", step.Label, orAbsent(step.Artifacts.Screenshot), orAbsent(step.Artifacts.State)))
	}
	return nil
}

func authorWriteBrief(ctx *Context, p *Payload) error {
	p.Schema = model.BriefSchema
	p.SchemaFields = briefSchemaFields

	out := ctx.OutputPath
	if out == "" {
		out = "brief.json"
	}
	p.Notes = append(p.Notes,
		fmt.Sprintf("write the complete brief to %s and verify the JSON is valid", out),
		"condition: derive directly from the criterion text; specific and testable",
		"failure_pattern: the inverse of condition; what failure looks like",
		fmt.Sprintf("severity: plan acceptance criteria -> %s, implied behavior -> %s, polish -> %s; %s when uncertain",
			model.SeverityMust, model.SeverityShould, model.SeverityCould, model.SeverityMust),
		fmt.Sprintf("kind: %s unless a state snapshot verifies the criterion; %s only when no other channel can", model.KindVisual, model.KindLog),
	)
	return nil
}

func orAbsent(ref string) string {
	if ref == "" {
		return "(absent)"
	}
	return ref
}
