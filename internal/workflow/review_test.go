package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/verdict"
)

func reviewContext() *Context {
	return &Context{
		Phase:     "impl-code",
		Iteration: 1,
		PlanFile:  "plan.md",
		Milestone: "M-001",
		Batch: &model.Batch{
			Schema: model.BatchSchema,
			Phase:  "impl-code",
			Items: []model.WorkItem{
				{ID: "QR-001", Status: model.StatusTodo, GroupID: "board", Claim: model.Claim{Severity: model.SeverityMust}},
				{ID: "QR-002", Status: model.StatusTodo, GroupID: "board", Claim: model.Claim{Severity: model.SeverityShould}},
				{ID: "QR-003", Status: model.StatusTodo, Claim: model.Claim{Severity: model.SeverityCould}},
			},
		},
	}
}

func TestReviewMachine_Composition(t *testing.T) {
	m := NewReviewMachine()

	// Decompose head (4 stages) + dispatch + verdict
	if m.Len() != 6 {
		t.Fatalf("expected 6 stages, got %d", m.Len())
	}
	if m.StageName(5) != "Verify Dispatch" {
		t.Errorf("expected stage 5 Verify Dispatch, got %s", m.StageName(5))
	}
	if m.StageName(6) != "Verdict" {
		t.Errorf("expected stage 6 Verdict, got %s", m.StageName(6))
	}
}

func TestReview_GenerateItems_Schema(t *testing.T) {
	p, err := NewReviewMachine().Guide(3, reviewContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Schema != model.BatchSchema {
		t.Errorf("expected schema %s, got %s", model.BatchSchema, p.Schema)
	}
	if len(p.SchemaFields) == 0 {
		t.Error("expected item schema fields listed")
	}
}

func TestReview_GroupPreview(t *testing.T) {
	p, err := NewReviewMachine().Guide(4, reviewContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Groups) != 2 {
		t.Fatalf("expected 2 groups (board + singleton), got %d", len(p.Groups))
	}
	if len(p.Groups["board"]) != 2 {
		t.Errorf("expected 2 items in board group, got %v", p.Groups["board"])
	}
}

func TestReview_GroupPreview_NoBatchYet(t *testing.T) {
	ctx := reviewContext()
	ctx.Batch = nil

	// Preview degrades with a note instead of failing: the batch is
	// written between stages 3 and 4
	p, err := NewReviewMachine().Guide(4, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Groups) != 0 {
		t.Errorf("expected no groups without a batch, got %v", p.Groups)
	}
}

func TestReview_Dispatch(t *testing.T) {
	ctx := reviewContext()
	ctx.Role = "quality-reviewer"

	p, err := NewReviewMachine().Guide(5, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Dispatches) != 2 {
		t.Fatalf("expected 2 dispatch descriptors, got %d", len(p.Dispatches))
	}

	for _, d := range p.Dispatches {
		if d.Role != "quality-reviewer" {
			t.Errorf("unexpected role: %s", d.Role)
		}
		if d.Invocation.Workflow != "verify" || d.Invocation.Step != 1 {
			t.Errorf("expected re-entry at verify step 1, got %+v", d.Invocation)
		}
		if !strings.Contains(d.Invocation.String(), "--phase impl-code") {
			t.Errorf("expected phase carried into invocation: %s", d.Invocation.String())
		}
	}

	// Dispatch is not terminal: the verdict stage follows
	if !strings.Contains(p.Next, "review --step 6") {
		t.Errorf("expected next to point at the verdict stage, got %q", p.Next)
	}
}

func TestReview_Dispatch_NoBatch(t *testing.T) {
	ctx := reviewContext()
	ctx.Batch = nil

	_, err := NewReviewMachine().Guide(5, ctx)
	if !errors.Is(err, ErrNoBatch) {
		t.Fatalf("expected ErrNoBatch, got %v", err)
	}
}

func TestReview_Dispatch_NothingTodo(t *testing.T) {
	ctx := reviewContext()
	for i := range ctx.Batch.Items {
		ctx.Batch.Items[i].Status = model.StatusPass
	}

	p, err := NewReviewMachine().Guide(5, ctx)
	if err != nil {
		t.Fatalf("expected empty fan-out to short-circuit, got error: %v", err)
	}
	if len(p.Dispatches) != 0 {
		t.Errorf("expected no descriptors, got %d", len(p.Dispatches))
	}
}

func TestReview_Verdict_Pass(t *testing.T) {
	ctx := reviewContext()
	for i := range ctx.Batch.Items {
		ctx.Batch.Items[i].Status = model.StatusPass
	}

	p, err := NewReviewMachine().Guide(6, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Verdict == nil {
		t.Fatal("expected a verdict result")
	}
	if p.Verdict.Verdict != model.VerdictPass {
		t.Errorf("expected PASS, got %s", p.Verdict.Verdict)
	}
	if p.VerdictRule.FailureVerdict != model.VerdictFail {
		t.Errorf("expected FAIL failure verdict for the review gate, got %s", p.VerdictRule.FailureVerdict)
	}
	if p.Next != "" {
		t.Errorf("expected terminal stage, got next %q", p.Next)
	}
}

func TestReview_Verdict_IncompleteBatch(t *testing.T) {
	_, err := NewReviewMachine().Guide(6, reviewContext())
	if err == nil {
		t.Fatal("expected error for a batch with TODO items")
	}

	var incomplete *verdict.IncompleteBatchError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteBatchError to propagate, got %T: %v", err, err)
	}
	if len(incomplete.ItemIDs) != 3 {
		t.Errorf("expected 3 TODO items reported, got %v", incomplete.ItemIDs)
	}
}

func TestReview_Verdict_GateNarrowing(t *testing.T) {
	ctx := reviewContext()
	ctx.Iteration = 4
	ctx.Batch.Items[0].Status = model.StatusPass
	ctx.Batch.Items[1].Status = model.StatusFail // SHOULD, outside the gate
	ctx.Batch.Items[2].Status = model.StatusFail // COULD, outside the gate

	p, err := NewReviewMachine().Guide(6, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Verdict.Verdict != model.VerdictPass {
		t.Errorf("expected PASS under the iteration-4 gate, got %s", p.Verdict.Verdict)
	}
	if p.Verdict.NonBlocking != 2 {
		t.Errorf("expected 2 non-blocking items, got %d", p.Verdict.NonBlocking)
	}
}

func TestReview_Verdict_BlockingOverride(t *testing.T) {
	ctx := reviewContext()
	ctx.Iteration = 1
	ctx.Blocking = model.SeveritySet{model.SeverityMust: true}
	ctx.Batch.Items[0].Status = model.StatusPass
	ctx.Batch.Items[1].Status = model.StatusFail
	ctx.Batch.Items[2].Status = model.StatusFail

	p, err := NewReviewMachine().Guide(6, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Verdict.Verdict != model.VerdictPass {
		t.Errorf("expected PASS with explicit MUST-only override, got %s", p.Verdict.Verdict)
	}
}
