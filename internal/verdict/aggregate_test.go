package verdict

import (
	"errors"
	"testing"

	"github.com/opsverity/verity/internal/model"
)

func allSeverities() model.SeveritySet {
	return model.SeveritySet{
		model.SeverityMust:   true,
		model.SeverityShould: true,
		model.SeverityCould:  true,
	}
}

func TestAggregate_AllPass(t *testing.T) {
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusPass, Claim: model.Claim{Severity: model.SeverityMust}},
		{ID: "QR-002", Status: model.StatusPass, Claim: model.Claim{Severity: model.SeverityCould}},
	}

	result, err := New(allSeverities()).Aggregate(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != model.VerdictPass {
		t.Errorf("expected PASS, got %s", result.Verdict)
	}
	if result.Passed != 2 || result.Failed != 0 {
		t.Errorf("expected 2 passed / 0 failed, got %d / %d", result.Passed, result.Failed)
	}
}

func TestAggregate_BlockingFailure(t *testing.T) {
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusPass, Claim: model.Claim{Severity: model.SeverityMust}},
		{ID: "QR-002", Status: model.StatusFail, Note: "score missing", Claim: model.Claim{Step: "clear-3-rows", Severity: model.SeverityMust}},
	}

	result, err := New(allSeverities()).Aggregate(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != model.VerdictFail {
		t.Errorf("expected FAIL, got %s", result.Verdict)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Findings))
	}
	f := result.Findings[0]
	if f.ItemID != "QR-002" || f.Step != "clear-3-rows" || f.Note != "score missing" {
		t.Errorf("unexpected finding: %+v", f)
	}
}

func TestAggregate_NonBlockingFailureIgnored(t *testing.T) {
	// Iteration 4 gate: only MUST blocks. A SHOULD failure passes the batch.
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusPass, Claim: model.Claim{Severity: model.SeverityMust}},
		{ID: "QR-002", Status: model.StatusFail, Claim: model.Claim{Severity: model.SeverityShould}},
		{ID: "QR-003", Status: model.StatusFail, Claim: model.Claim{Severity: model.SeverityCould}},
	}

	result, err := New(model.BlockingSeverities(4)).Aggregate(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != model.VerdictPass {
		t.Errorf("expected PASS under MUST-only gate, got %s", result.Verdict)
	}
	if result.NonBlocking != 2 {
		t.Errorf("expected 2 non-blocking items, got %d", result.NonBlocking)
	}
	if len(result.Findings) != 0 {
		t.Errorf("expected no findings for non-blocking failures, got %d", len(result.Findings))
	}
}

func TestAggregate_SameBatchDifferentIterations(t *testing.T) {
	// The same failed SHOULD item blocks at iteration 3 and passes at 4
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusFail, Claim: model.Claim{Severity: model.SeverityShould}},
	}

	r3, err := New(model.BlockingSeverities(3)).Aggregate(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r3.Verdict != model.VerdictFail {
		t.Errorf("iteration 3: expected FAIL, got %s", r3.Verdict)
	}

	r4, err := New(model.BlockingSeverities(4)).Aggregate(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r4.Verdict != model.VerdictPass {
		t.Errorf("iteration 4: expected PASS, got %s", r4.Verdict)
	}
}

func TestAggregate_SkipNeverAffectsVerdict(t *testing.T) {
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusSkip, Claim: model.Claim{Kind: model.KindLog, Severity: model.SeverityMust}},
		{ID: "QR-002", Status: model.StatusPass, Claim: model.Claim{Severity: model.SeverityMust}},
	}

	result, err := New(allSeverities()).Aggregate(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != model.VerdictPass {
		t.Errorf("expected PASS with skipped blocking item, got %s", result.Verdict)
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Skipped)
	}
}

func TestAggregate_IncompleteBatch(t *testing.T) {
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusPass, Claim: model.Claim{Severity: model.SeverityMust}},
		{ID: "QR-002", Status: model.StatusTodo, Claim: model.Claim{Severity: model.SeverityMust}},
		{ID: "QR-003", Status: model.StatusTodo, Claim: model.Claim{Severity: model.SeverityCould}},
	}

	_, err := New(allSeverities()).Aggregate(items)
	if err == nil {
		t.Fatal("expected IncompleteBatchError, got nil")
	}

	var incomplete *IncompleteBatchError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteBatchError, got %T: %v", err, err)
	}
	if len(incomplete.ItemIDs) != 2 {
		t.Errorf("expected 2 TODO items reported, got %v", incomplete.ItemIDs)
	}
}

func TestAggregate_IncompleteEvenWhenNonBlocking(t *testing.T) {
	// A TODO item outside the gate still makes the batch incomplete: the
	// TODO check precedes the gate partition
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusPass, Claim: model.Claim{Severity: model.SeverityMust}},
		{ID: "QR-002", Status: model.StatusTodo, Claim: model.Claim{Severity: model.SeverityCould}},
	}

	_, err := New(model.BlockingSeverities(4)).Aggregate(items)
	var incomplete *IncompleteBatchError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteBatchError, got %v", err)
	}
}

func TestAggregate_FailureVerdictOverride(t *testing.T) {
	items := []model.WorkItem{
		{ID: "QR-001", Status: model.StatusFail, Claim: model.Claim{Severity: model.SeverityMust}},
	}

	result, err := New(allSeverities()).WithFailureVerdict(model.VerdictIssues).Aggregate(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != model.VerdictIssues {
		t.Errorf("expected ISSUES, got %s", result.Verdict)
	}
}

func TestAggregate_EmptyBatch(t *testing.T) {
	result, err := New(allSeverities()).Aggregate(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != model.VerdictPass {
		t.Errorf("expected PASS for empty batch, got %s", result.Verdict)
	}
	if result.Total != 0 {
		t.Errorf("expected total 0, got %d", result.Total)
	}
}
