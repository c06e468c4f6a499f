package workflow

import (
	"errors"
	"fmt"

	"github.com/opsverity/verity/internal/dispatch"
	"github.com/opsverity/verity/internal/group"
	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/verdict"
)

// batchItemFields lists the required fields of every generated work item
var batchItemFields = []string{
	"id", "status", "group_id", "step", "kind", "condition", "failure_pattern", "severity",
}

// NewDecomposeMachine builds the item-generation half of the review
// workflow: reading review inputs, decomposing them into addressable work
// items, and previewing the dispatch grouping.
func NewDecomposeMachine() *Machine {
	return New("decompose",
		Stage{Name: "Read Plan Criteria", Run: authorReadPlan},
		Stage{Name: "Collect Review Targets", Run: decomposeCollect},
		Stage{Name: "Generate Items", Run: decomposeGenerate},
		Stage{Name: "Group Preview", Run: decomposePreview},
	)
}

// NewReviewMachine builds the full review coordinator. The decompose
// machine forms its head; its terminal stage chains into dispatch and
// verdict instead of ending the workflow.
func NewReviewMachine() *Machine {
	return Compose("review",
		NewDecomposeMachine(),
		New("",
			Stage{Name: "Verify Dispatch", Run: reviewDispatch},
			Stage{Name: "Verdict", Run: reviewVerdict},
		),
	)
}

func decomposeCollect(ctx *Context, p *Payload) error {
	p.Notes = append(p.Notes,
		"enumerate the artifacts changed for this phase; each independently reviewable concern becomes one item",
		"related edits to the same artifact share a group_id so one verifying pass covers them",
	)
	return nil
}

func decomposeGenerate(ctx *Context, p *Payload) error {
	p.Schema = model.BatchSchema
	p.SchemaFields = batchItemFields

	phase := ctx.Phase
	if phase == "" {
		phase = "impl-code"
	}
	p.Notes = append(p.Notes,
		fmt.Sprintf("write the batch to qr-%s.json in the state directory with every item status=%s", phase, model.StatusTodo),
		"item IDs must be unique within the batch",
		fmt.Sprintf("severity: %s for acceptance criteria, %s for structural concerns, %s for polish", model.SeverityMust, model.SeverityShould, model.SeverityCould),
	)
	return nil
}

func decomposePreview(ctx *Context, p *Payload) error {
	if ctx.Batch == nil {
		p.Notes = append(p.Notes, "batch not written yet; grouping preview unavailable")
		return nil
	}

	todo := ctx.Batch.TodoItems()
	p.Items = todo
	p.Groups = group.Partition(todo)
	p.Notes = append(p.Notes, fmt.Sprintf("%d TODO item(s) in %d group(s)", len(todo), len(p.Groups)))
	return nil
}

func reviewDispatch(ctx *Context, p *Payload) error {
	if ctx.Batch == nil {
		return ErrNoBatch
	}

	role := ctx.Role
	if role == "" {
		role = "quality-reviewer"
	}
	coord := dispatch.NewCoordinator(role, "verify")

	descriptors, err := coord.Build(ctx.Batch, ctx.Invocation("verify", 1).Params)
	if errors.Is(err, dispatch.ErrNothingToDispatch) {
		// Short-circuit straight to aggregation; an empty fan-out is
		// never dispatched.
		p.Notes = append(p.Notes, "no TODO items remain; proceed directly to the verdict stage")
		return nil
	}
	if err != nil {
		return err
	}

	p.Dispatches = descriptors
	p.Groups = group.Partition(ctx.Batch.TodoItems())
	p.Notes = append(p.Notes,
		fmt.Sprintf("dispatch one %s agent per group; all %d group(s) run in parallel", role, len(descriptors)),
		"wait for every agent to record an outcome before invoking the verdict stage",
	)
	return nil
}

func reviewVerdict(ctx *Context, p *Payload) error {
	if ctx.Batch == nil {
		return ErrNoBatch
	}

	blocking := ctx.EffectiveBlocking()
	result, err := verdict.New(blocking).Aggregate(ctx.Batch.Items)
	if err != nil {
		// Incomplete batch propagates as a typed error: the caller must
		// re-dispatch, not treat the run as a verified failure.
		return err
	}

	p.Verdict = result
	p.VerdictRule = &VerdictRule{
		Blocking:       blocking,
		BlockingCSV:    blocking.String(),
		FailureVerdict: model.VerdictFail,
	}
	p.Notes = append(p.Notes, model.IterationGuidance(iterationOrDefault(ctx.Iteration)))
	return nil
}
