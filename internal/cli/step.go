package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/render"
	"github.com/opsverity/verity/internal/state"
	"github.com/opsverity/verity/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	stepNum      int
	stateDir     string
	phase        string
	iteration    int
	tier         string
	role         string
	blockingCSV  string
	itemIDs      []string
	planFile     string
	milestone    string
	outputPath   string
	outputFormat string
)

// analyzeCmd drives an artifact-analysis sub-agent through its workflow
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Step guidance for the artifact analysis workflow",
	Long: `Analyze guides a verification sub-agent through structured analysis of
captured evidence artifacts: read the claim brief, correlate claims with the
artifact topology, examine evidence per claim, and report PASS or ISSUES.

Example:
  verity analyze --step 1 --state-dir ./state --iteration 2 --tier thorough`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(workflow.NewAnalysisMachine())
	},
}

// authorCmd drives a brief-authoring sub-agent through its workflow
var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Step guidance for the claim brief authoring workflow",
	Long: `Author guides a quality-reviewer sub-agent through turning plan
acceptance criteria and the artifact topology into a severity-tagged claim
brief.

Example:
  verity author --step 1 --state-dir ./state --plan-file plan.md --milestone M-001`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(workflow.NewAuthorMachine())
	},
}

// reviewCmd drives the composite review coordinator workflow
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Step guidance for the review coordinator workflow",
	Long: `Review is the composite coordinator: item generation and grouping form
its head, then one stage dispatches parallel verify agents per group and the
final stage aggregates outcomes into the PASS/FAIL gate verdict.

Example:
  verity review --step 1 --state-dir ./state --phase impl-code --iteration 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(workflow.NewReviewMachine())
	},
}

// verifyCmd drives one dispatched verify agent over its item subset
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Step guidance for a dispatched verify agent",
	Long: `Verify is the workflow a dispatched agent runs against its group of
items. Dispatch descriptors produced by the review workflow re-enter this
machine scoped via --item flags.

Example:
  verity verify --step 1 --state-dir ./state --phase impl-code --item QR-003 --item QR-007`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(workflow.NewVerifyMachine())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{analyzeCmd, authorCmd, reviewCmd, verifyCmd} {
		cmd.Flags().IntVar(&stepNum, "step", 1, "workflow step number (1-indexed)")
		cmd.Flags().StringVar(&stateDir, "state-dir", "", "state directory path")
		cmd.Flags().StringVar(&phase, "phase", "", "phase name keying the batch file")
		cmd.Flags().IntVar(&iteration, "iteration", model.IterationDefault, "verification loop iteration (1-indexed)")
		cmd.Flags().StringVar(&blockingCSV, "blocking-severities", "", "override blocking severities (e.g. MUST,SHOULD)")
		cmd.Flags().StringArrayVar(&itemIDs, "item", nil, "item ID scoping this run (repeatable)")
		cmd.Flags().StringVar(&outputFormat, "format", "text", "output format (text or json)")
		rootCmd.AddCommand(cmd)
	}

	analyzeCmd.Flags().StringVar(&tier, "tier", "cursory", "analysis tier (cursory or thorough)")
	reviewCmd.Flags().StringVar(&role, "role", "", "executor role for dispatch descriptors")
	authorCmd.Flags().StringVar(&planFile, "plan-file", "", "path to the plan file")
	authorCmd.Flags().StringVar(&milestone, "milestone", "", "milestone ID (e.g. M-001)")
	authorCmd.Flags().StringVar(&outputPath, "output", "", "output path for the authored brief")
}

// stageErrorPayload is the structured error returned for failed stage
// invocations. Every error is reported, never silent; the caller owns all
// retry decisions.
type stageErrorPayload struct {
	Error    string `json:"error"`
	Workflow string `json:"workflow,omitempty"`
	Stage    int    `json:"stage,omitempty"`
	MaxStage int    `json:"max_stage,omitempty"`
}

// runStep loads context from persisted state and invokes one stage.
// All I/O happens here: the stage functions stay pure.
func runStep(machine *workflow.Machine) error {
	cfg := loadConfig()
	dir := stateDir
	if dir == "" {
		dir = cfg.State.Dir
	}
	store := state.NewStore(dir, cfg.State.CacheTTL)

	ctx, err := buildContext(store, cfg, dir)
	if err != nil {
		return err
	}
	if note := iterationLimitNote(cfg.Review.IterationLimit, iteration); note != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", note)
	}

	payload, err := machine.Guide(stepNum, ctx)
	if err != nil {
		reportStageError(machine, err)
		return err
	}

	if outputFormat == "json" {
		return render.JSON(os.Stdout, payload)
	}
	render.Payload(os.Stdout, payload)
	return nil
}

// iterationLimitNote returns a warning when the caller has looped past the
// configured iteration cap, or "" inside the limit
func iterationLimitNote(limit, iteration int) string {
	if limit > 0 && iteration > limit {
		return fmt.Sprintf("iteration %d exceeds the iteration limit (%d); accept the current verdict instead of looping further", iteration, limit)
	}
	return ""
}

// buildContext assembles the stage context from flags and persisted state.
// Optional inputs load as nil when absent; stages decide what is fatal.
// The dir argument is the resolved state directory, so rendered re-entry
// invocations carry it even when the flag was left to the config default.
func buildContext(store *state.Store, cfg *model.Config, dir string) (*workflow.Context, error) {
	ctx := &workflow.Context{
		StateDir:   dir,
		Phase:      phase,
		Iteration:  iteration,
		Tier:       workflow.Tier(tier),
		Role:       role,
		ItemIDs:    itemIDs,
		PlanFile:   planFile,
		Milestone:  milestone,
		OutputPath: outputPath,
	}
	if ctx.Role == "" {
		ctx.Role = cfg.Dispatch.TargetRole
	}

	if blockingCSV != "" {
		set, ok := model.ParseSeveritySet(blockingCSV)
		if !ok {
			return nil, fmt.Errorf("invalid blocking severities: %s", blockingCSV)
		}
		ctx.Blocking = set
	}

	var err error
	if ctx.Brief, err = store.LoadBrief(); err != nil {
		return nil, err
	}
	if ctx.Topology, err = store.LoadTopology(); err != nil {
		return nil, err
	}
	batchPhase := phase
	if batchPhase == "" {
		batchPhase = cfg.Review.Phase
	}
	if ctx.Batch, err = store.LoadBatch(batchPhase); err != nil {
		return nil, err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "State dir: %s\n", store.BatchPath(batchPhase))
		fmt.Fprintf(os.Stderr, "%s\n", model.IterationGuidance(iteration))
	}
	return ctx, nil
}

// reportStageError prints the typed error payload before the error
// propagates to the exit path
func reportStageError(machine *workflow.Machine, err error) {
	payload := stageErrorPayload{Error: err.Error(), Workflow: machine.Name()}

	var invalid *workflow.InvalidStageError
	var stageErr *workflow.StageError
	switch {
	case errors.As(err, &invalid):
		payload.Stage = invalid.Stage
		payload.MaxStage = invalid.Max
	case errors.As(err, &stageErr):
		payload.Stage = stageErr.Stage
		payload.MaxStage = machine.Len()
	}

	if outputFormat == "json" {
		_ = render.JSON(os.Stdout, payload)
		return
	}
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", payload.Error)
}
