package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/verdict"
	"github.com/opsverity/verity/internal/workflow"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]int{"stage": 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["stage"] != 2 {
		t.Errorf("unexpected decoded value: %v", decoded)
	}
}

func TestPayload_Header(t *testing.T) {
	var buf bytes.Buffer
	Payload(&buf, &workflow.Payload{
		Workflow: "analyze",
		Stage:    2,
		Stages:   4,
		Title:    "Correlate",
		Notes:    []string{"topology lists 3 steps"},
		Next:     "verity analyze --step 3",
	})

	out := buf.String()
	for _, want := range []string{"analyze", "step 2/4", "Correlate", "topology lists 3 steps", "Next: verity analyze --step 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPayload_Terminal(t *testing.T) {
	var buf bytes.Buffer
	Payload(&buf, &workflow.Payload{Workflow: "verify", Stage: 3, Stages: 3, Title: "Record Outcomes"})

	out := buf.String()
	if strings.Contains(out, "Next:") {
		t.Errorf("expected no next line at terminal stage, got:\n%s", out)
	}
	if !strings.Contains(out, "Workflow complete") {
		t.Errorf("expected completion message, got:\n%s", out)
	}
}

func TestPayload_Claims(t *testing.T) {
	var buf bytes.Buffer
	Payload(&buf, &workflow.Payload{
		Workflow: "analyze", Stage: 1, Stages: 4, Title: "Read Brief",
		Claims: []model.Claim{
			{Step: "clear-3-rows", Kind: model.KindVisual, Severity: model.SeverityMust, Condition: "rows cleared"},
		},
		Next: "verity analyze --step 2",
	})

	out := buf.String()
	if !strings.Contains(out, "clear-3-rows") || !strings.Contains(out, "rows cleared") {
		t.Errorf("expected claim table, got:\n%s", out)
	}
}

func TestPayload_Schema(t *testing.T) {
	var buf bytes.Buffer
	Payload(&buf, &workflow.Payload{
		Workflow: "author", Stage: 3, Stages: 3, Title: "Author Brief",
		Schema:       model.BriefSchema,
		SchemaFields: []string{"step", "kind", "condition"},
	})

	out := buf.String()
	if !strings.Contains(out, model.BriefSchema) {
		t.Errorf("expected schema tag, got:\n%s", out)
	}
	if !strings.Contains(out, "step, kind, condition") {
		t.Errorf("expected field list, got:\n%s", out)
	}
}

func TestVerdict(t *testing.T) {
	var buf bytes.Buffer
	Verdict(&buf, &verdict.Result{
		Verdict:     model.VerdictFail,
		BlockingCSV: "MUST,SHOULD",
		Total:       3, Passed: 2, Failed: 1,
		Findings: []verdict.Finding{
			{ItemID: "QR-002", Severity: model.SeverityMust, Step: "clear-3-rows", Note: "score missing"},
		},
	})

	out := buf.String()
	for _, want := range []string{"RESULT: FAIL", "MUST,SHOULD", "QR-002", "score missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
