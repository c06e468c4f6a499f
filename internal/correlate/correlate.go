// Package correlate matches claims against an externally supplied topology,
// resolving evidence references and flagging unmatched entries as a distinct
// failure class rather than silently dropping them.
package correlate

import (
	"fmt"

	"github.com/opsverity/verity/internal/model"
)

// Result pairs one input claim with its correlation outcome
type Result struct {
	Claim       model.Claim `json:"claim"`
	StepLabel   string      `json:"step_label"`             // Resolved label, "unknown" when unmatched
	EvidenceRef string      `json:"evidence_ref,omitempty"` // Resolved artifact path, empty when unmatched
	Unmatched   bool        `json:"unmatched"`              // True when no topology entry matched
	Reason      string      `json:"reason,omitempty"`       // Why the entry is unmatched
}

// Resolve correlates each claim with the topology. Output order matches
// input order and every claim yields exactly one result.
//
// A nil topology degrades to the defined no-manifest mode: every entry is
// unmatched, step forced to "unknown", evidence forced to absent. Paths are
// never fabricated.
func Resolve(claims []model.Claim, topo *model.Topology) []Result {
	results := make([]Result, 0, len(claims))

	for _, claim := range claims {
		if topo == nil {
			results = append(results, Result{
				Claim:     claim,
				StepLabel: model.StepUnknown,
				Unmatched: true,
				Reason:    "no topology available",
			})
			continue
		}

		step := topo.FindStep(claim.Step)
		if step == nil {
			results = append(results, Result{
				Claim:     claim,
				StepLabel: model.StepUnknown,
				Unmatched: true,
				Reason:    fmt.Sprintf("step label not found in topology: %s", claim.Step),
			})
			continue
		}

		ref := step.Artifacts.ForKind(claim.Kind)
		if ref == "" {
			// The step exists but captured nothing for this channel.
			// Surfaced as unmatched so a missing artifact is visible even
			// when no claim content is itself false.
			results = append(results, Result{
				Claim:     claim,
				StepLabel: step.Label,
				Unmatched: true,
				Reason:    fmt.Sprintf("step %s has no %s artifact", step.Label, claim.Kind),
			})
			continue
		}

		results = append(results, Result{
			Claim:       claim,
			StepLabel:   step.Label,
			EvidenceRef: ref,
		})
	}

	return results
}

// Unmatched filters results down to the correlation misses. These are
// reportable findings, separate from PASS/ISSUES semantics; they never
// abort the workflow.
func Unmatched(results []Result) []Result {
	var misses []Result
	for _, r := range results {
		if r.Unmatched {
			misses = append(misses, r)
		}
	}
	return misses
}

// FilterKinds keeps claims whose kind is in the given set, preserving order.
// Used by the cursory analysis tier, which examines visual evidence only.
func FilterKinds(claims []model.Claim, kinds ...model.ClaimKind) []model.Claim {
	allowed := make(map[model.ClaimKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	var kept []model.Claim
	for _, c := range claims {
		if allowed[c.Kind] {
			kept = append(kept, c)
		}
	}
	return kept
}

// FilterSeverity keeps claims whose severity is in the blocking set,
// preserving order. Claims outside the set are treated as SKIP for the
// current iteration.
func FilterSeverity(claims []model.Claim, blocking model.SeveritySet) []model.Claim {
	var kept []model.Claim
	for _, c := range claims {
		if blocking.Has(c.Severity) {
			kept = append(kept, c)
		}
	}
	return kept
}
