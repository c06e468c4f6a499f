package workflow

import (
	"fmt"

	"github.com/opsverity/verity/internal/correlate"
	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/verdict"
)

// NewAnalysisMachine builds the artifact analysis workflow run by a
// verification sub-agent:
//
//	1. Read Brief       - filter claims by tier and severity gate
//	2. Correlate        - match claims against the topology
//	3. Examine Evidence - per-claim evidence directives
//	4. Report           - PASS/ISSUES reduction rules
func NewAnalysisMachine() *Machine {
	return New("analyze",
		Stage{Name: "Read Brief", Run: analysisReadBrief},
		Stage{Name: "Correlate", Run: analysisCorrelate},
		Stage{Name: "Examine Evidence", Run: analysisExamine},
		Stage{Name: "Report", Run: analysisReport},
	)
}

// filteredClaims applies the tier filter then the severity gate, in that
// order. Claims outside the gate are SKIP for this iteration, not dropped
// from the run's accounting.
func filteredClaims(ctx *Context) []model.Claim {
	claims := ctx.Brief.Claims
	if ctx.Tier != TierThorough {
		claims = correlate.FilterKinds(claims, model.KindVisual)
	}
	return correlate.FilterSeverity(claims, ctx.EffectiveBlocking())
}

func analysisReadBrief(ctx *Context, p *Payload) error {
	if ctx.Brief == nil {
		return ErrNoBrief
	}

	blocking := ctx.EffectiveBlocking()
	kept := filteredClaims(ctx)

	p.Claims = kept
	p.Notes = append(p.Notes,
		fmt.Sprintf("brief contains %d claim(s); %d remain after tier=%s and severity filtering", len(ctx.Brief.Claims), len(kept), tierOrDefault(ctx.Tier)),
		fmt.Sprintf("blocking severities: %s", blocking.String()),
	)
	if skipped := len(ctx.Brief.Claims) - len(kept); skipped > 0 {
		p.Notes = append(p.Notes, fmt.Sprintf("%d claim(s) treated as SKIP for this iteration", skipped))
	}
	return nil
}

func analysisCorrelate(ctx *Context, p *Payload) error {
	if ctx.Brief == nil {
		return ErrNoBrief
	}

	results := correlate.Resolve(filteredClaims(ctx), ctx.Topology)
	p.Correlations = results

	if ctx.Topology == nil {
		p.Notes = append(p.Notes, "topology not found; all claims unmatched, evidence absent")
	}
	for _, miss := range correlate.Unmatched(results) {
		p.Notes = append(p.Notes, fmt.Sprintf("unmatched: %s", miss.Reason))
	}
	return nil
}

func analysisExamine(ctx *Context, p *Payload) error {
	if ctx.Brief == nil {
		return ErrNoBrief
	}

	for _, r := range correlate.Resolve(filteredClaims(ctx), ctx.Topology) {
		exam := Examination{Claim: r.Claim, EvidenceRef: r.EvidenceRef}
		switch {
		case r.Unmatched:
			exam.Action = ActionSkip
			exam.Reason = r.Reason
		case r.Claim.Kind == model.KindVisual:
			exam.Action = ActionReadScreenshot
		case r.Claim.Kind == model.KindState:
			exam.Action = ActionReadState
		default:
			// Log capture has no file artifact upstream; the claim stays
			// SKIP rather than silently passing or failing.
			exam.Action = ActionSkip
			exam.Reason = "log artifacts not captured"
		}
		p.Examinations = append(p.Examinations, exam)
	}
	return nil
}

func analysisReport(ctx *Context, p *Payload) error {
	if ctx.Brief == nil {
		return ErrNoBrief
	}

	blocking := ctx.EffectiveBlocking()
	p.VerdictRule = &VerdictRule{
		Blocking:       blocking,
		BlockingCSV:    blocking.String(),
		FailureVerdict: model.VerdictIssues,
	}
	p.Notes = append(p.Notes,
		"PASS: condition met and failure pattern not triggered, for every non-SKIP claim",
		"ISSUES: any non-SKIP claim violates its condition or triggers its failure pattern",
		"SKIP claims never affect the overall verdict",
		model.IterationGuidance(iterationOrDefault(ctx.Iteration)),
	)
	return nil
}

// AggregateAnalysis reduces verified analysis items to the evidence-report
// verdict (PASS/ISSUES) under the context's severity gate. Exposed for
// callers that track analysis outcomes as batch items.
func AggregateAnalysis(ctx *Context, items []model.WorkItem) (*verdict.Result, error) {
	agg := verdict.New(ctx.EffectiveBlocking()).WithFailureVerdict(model.VerdictIssues)
	return agg.Aggregate(items)
}

func tierOrDefault(t Tier) Tier {
	if t == "" {
		return TierCursory
	}
	return t
}

func iterationOrDefault(i int) int {
	if i < 1 {
		return model.IterationDefault
	}
	return i
}
