// Package verdict reduces a batch of verified items to a single outcome
// under the active severity gate.
package verdict

import (
	"fmt"
	"strings"

	"github.com/opsverity/verity/internal/model"
)

// IncompleteBatchError reports items still TODO at aggregation time.
// It is distinct from a verified failure: it signals the caller to
// re-dispatch, not to treat the batch as failed.
type IncompleteBatchError struct {
	ItemIDs []string
}

func (e *IncompleteBatchError) Error() string {
	return fmt.Sprintf("incomplete batch: %d item(s) still TODO: %s",
		len(e.ItemIDs), strings.Join(e.ItemIDs, ", "))
}

// Finding records one blocking item that failed verification
type Finding struct {
	ItemID   string         `json:"item_id"`
	Step     string         `json:"step"`
	Severity model.Severity `json:"severity"`
	Note     string         `json:"note,omitempty"`
}

// Result is the aggregated outcome of a batch
type Result struct {
	Verdict     model.Verdict     `json:"verdict"`
	Blocking    model.SeveritySet `json:"-"`
	BlockingCSV string            `json:"blocking"` // Severity set as rendered for reports
	Total       int               `json:"total"`
	Passed      int               `json:"passed"`
	Failed      int               `json:"failed"`
	Skipped     int               `json:"skipped"`
	NonBlocking int               `json:"non_blocking"` // Items outside the gate, any status
	Findings    []Finding         `json:"findings,omitempty"`
}

// Aggregator computes verdicts under a fixed severity gate
type Aggregator struct {
	blocking model.SeveritySet
	failure  model.Verdict
}

// New creates an aggregator for the given blocking severities.
// The failure verdict defaults to FAIL (executor-gate style).
func New(blocking model.SeveritySet) *Aggregator {
	return &Aggregator{blocking: blocking, failure: model.VerdictFail}
}

// WithFailureVerdict overrides the verdict reported on blocking failures.
// Claim-style evidence reports use ISSUES instead of FAIL.
func (a *Aggregator) WithFailureVerdict(v model.Verdict) *Aggregator {
	a.failure = v
	return a
}

// Aggregate reduces the items to a single verdict.
//
// Items are partitioned into blocking (severity in the gate) and
// non-blocking. Non-blocking items never affect the verdict regardless of
// status. SKIP never affects the verdict. Any blocking FAIL yields the
// failure verdict; otherwise PASS. Any item still TODO yields an
// IncompleteBatchError instead of a verdict.
func (a *Aggregator) Aggregate(items []model.WorkItem) (*Result, error) {
	var todo []string
	for _, item := range items {
		if item.Status == model.StatusTodo {
			todo = append(todo, item.ID)
		}
	}
	if len(todo) > 0 {
		return nil, &IncompleteBatchError{ItemIDs: todo}
	}

	result := &Result{
		Verdict:     model.VerdictPass,
		Blocking:    a.blocking,
		BlockingCSV: a.blocking.String(),
		Total:       len(items),
	}

	for _, item := range items {
		if !a.blocking.Has(item.Severity) {
			result.NonBlocking++
			continue
		}
		switch item.Status {
		case model.StatusPass:
			result.Passed++
		case model.StatusSkip:
			result.Skipped++
		case model.StatusFail:
			result.Failed++
			result.Findings = append(result.Findings, Finding{
				ItemID:   item.ID,
				Step:     item.Step,
				Severity: item.Severity,
				Note:     item.Note,
			})
		}
	}

	if result.Failed > 0 {
		result.Verdict = a.failure
	}
	return result, nil
}
