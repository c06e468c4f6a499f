// Package render turns structured stage payloads into human-readable
// guidance. The payload data is the binding contract; this text is
// documentation generated from it, never an executable contract itself.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/opsverity/verity/internal/verdict"
	"github.com/opsverity/verity/internal/workflow"
)

const rule = "═══════════════════════════════════════════════════════════"

// JSON writes the payload (or any structured value) as indented JSON
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Payload renders one stage payload as guidance text
func Payload(w io.Writer, p *workflow.Payload) {
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "  %s — step %d/%d: %s\n", p.Workflow, p.Stage, p.Stages, p.Title)
	fmt.Fprintf(w, "%s\n\n", rule)

	for _, note := range p.Notes {
		fmt.Fprintf(w, "  %s\n", note)
	}
	if len(p.Notes) > 0 {
		fmt.Fprintln(w)
	}

	renderClaims(w, p)
	renderCorrelations(w, p)
	renderExaminations(w, p)
	renderGroups(w, p)
	renderDispatches(w, p)
	renderSchema(w, p)
	if p.Verdict != nil {
		Verdict(w, p.Verdict)
	}

	if p.Next != "" {
		fmt.Fprintf(w, "Next: %s\n", p.Next)
	} else {
		fmt.Fprintf(w, "Workflow complete. Return the result to the orchestrator.\n")
	}
}

func renderClaims(w io.Writer, p *workflow.Payload) {
	if len(p.Claims) == 0 {
		return
	}
	fmt.Fprintf(w, "  | # | step | kind | severity | condition |\n")
	fmt.Fprintf(w, "  | - | ---- | ---- | -------- | --------- |\n")
	for i, c := range p.Claims {
		fmt.Fprintf(w, "  | %d | %s | %s | %s | %s |\n", i+1, c.Step, c.Kind, c.Severity, c.Condition)
	}
	fmt.Fprintln(w)
}

func renderCorrelations(w io.Writer, p *workflow.Payload) {
	if len(p.Correlations) == 0 {
		return
	}
	fmt.Fprintf(w, "  | # | step | evidence | status |\n")
	fmt.Fprintf(w, "  | - | ---- | -------- | ------ |\n")
	for i, r := range p.Correlations {
		status := "matched"
		if r.Unmatched {
			status = "UNMATCHED: " + r.Reason
		}
		fmt.Fprintf(w, "  | %d | %s | %s | %s |\n", i+1, r.StepLabel, orDash(r.EvidenceRef), status)
	}
	fmt.Fprintln(w)
}

func renderExaminations(w io.Writer, p *workflow.Payload) {
	if len(p.Examinations) == 0 {
		return
	}
	for i, e := range p.Examinations {
		line := fmt.Sprintf("  %d. [%s] %s -> %s", i+1, e.Claim.Severity, e.Claim.Condition, e.Action)
		if e.EvidenceRef != "" {
			line += " " + e.EvidenceRef
		}
		if e.Reason != "" {
			line += " (" + e.Reason + ")"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func renderGroups(w io.Writer, p *workflow.Payload) {
	if len(p.Groups) == 0 || len(p.Dispatches) > 0 {
		return
	}
	fmt.Fprintf(w, "  Groups: %d\n\n", len(p.Groups))
}

func renderDispatches(w io.Writer, p *workflow.Payload) {
	if len(p.Dispatches) == 0 {
		return
	}
	fmt.Fprintf(w, "PARALLEL DISPATCH — %d group(s), one agent each:\n\n", len(p.Dispatches))
	for _, d := range p.Dispatches {
		fmt.Fprintf(w, "  GROUP %s (%d item(s))\n", d.GroupKey, len(d.ItemIDs))
		fmt.Fprintf(w, "    Items:   %s\n", strings.Join(d.ItemIDs, ", "))
		fmt.Fprintf(w, "    Role:    %s\n", d.Role)
		fmt.Fprintf(w, "    Command: %s\n\n", d.Invocation.String())
	}
}

func renderSchema(w io.Writer, p *workflow.Payload) {
	if p.Schema == "" {
		return
	}
	fmt.Fprintf(w, "  Schema: %s\n", p.Schema)
	if len(p.SchemaFields) > 0 {
		fmt.Fprintf(w, "  Fields: %s\n", strings.Join(p.SchemaFields, ", "))
	}
	fmt.Fprintln(w)
}

// Verdict renders an aggregated result
func Verdict(w io.Writer, r *verdict.Result) {
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "  RESULT: %s\n", r.Verdict)
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "  Blocking:     %s\n", r.BlockingCSV)
	fmt.Fprintf(w, "  Items:        %d total, %d passed, %d failed, %d skipped, %d non-blocking\n",
		r.Total, r.Passed, r.Failed, r.Skipped, r.NonBlocking)
	for _, f := range r.Findings {
		fmt.Fprintf(w, "  ✗ %s [%s] step=%s %s\n", f.ItemID, f.Severity, f.Step, f.Note)
	}
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
