package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/opsverity/verity/internal/dispatch"
	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/render"
	"github.com/opsverity/verity/internal/runner"
	"github.com/opsverity/verity/internal/state"
	"github.com/opsverity/verity/internal/verdict"
	"github.com/spf13/cobra"
)

var (
	execCommand []string
	runWorkers  int
	runRate     float64
	runBurst    int
	runTimeout  time.Duration
)

// runCmd is the local harness: fan out, join, aggregate in one shot
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch all pending groups through an executor and aggregate",
	Long: `Run plays the external orchestrator: it builds one dispatch descriptor
per group of TODO items, executes every group in parallel through the
configured executor command, waits for all of them, then aggregates the
batch under the active severity gate.

The executor command receives two extra arguments per group: the target
role and the reproducible re-entry invocation. It is expected to verify
its items and record outcomes in the batch file before exiting.

Example:
  verity run --state-dir ./state --phase impl-code --exec ./dispatch-agent.sh
  verity run --state-dir ./state --workers 8 --rate 4 --iteration 2`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&stateDir, "state-dir", "", "state directory path")
	runCmd.Flags().StringVar(&phase, "phase", "", "phase name keying the batch file")
	runCmd.Flags().IntVar(&iteration, "iteration", model.IterationDefault, "verification loop iteration (1-indexed)")
	runCmd.Flags().StringVar(&role, "role", "", "executor role for dispatch descriptors")
	runCmd.Flags().StringVar(&blockingCSV, "blocking-severities", "", "override blocking severities (e.g. MUST,SHOULD)")
	runCmd.Flags().StringVar(&outputFormat, "format", "text", "output format (text or json)")

	runCmd.Flags().StringArrayVar(&execCommand, "exec", nil, "executor command (repeatable for command + args)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent dispatch workers")
	runCmd.Flags().Float64Var(&runRate, "rate", 0, "dispatches per second per role")
	runCmd.Flags().IntVar(&runBurst, "burst", 0, "rate limiter burst size")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall dispatch timeout")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	dir := stateDir
	if dir == "" {
		dir = cfg.State.Dir
	}
	batchPhase := phase
	if batchPhase == "" {
		batchPhase = cfg.Review.Phase
	}
	targetRole := role
	if targetRole == "" {
		targetRole = cfg.Dispatch.TargetRole
	}
	if runWorkers <= 0 {
		runWorkers = cfg.Dispatch.Workers
	}
	if runRate <= 0 {
		runRate = cfg.Dispatch.RequestsPerSecond
	}
	if runBurst <= 0 {
		runBurst = cfg.Dispatch.BurstSize
	}
	if len(execCommand) == 0 {
		return fmt.Errorf("no executor command: pass --exec (repeatable for command arguments)")
	}

	store := state.NewStore(dir, cfg.State.CacheTTL)
	batch, err := store.LoadBatch(batchPhase)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("no persisted batch for phase %s in %s: run the review generation steps first", batchPhase, dir)
	}

	params := map[string]string{
		"phase":     batchPhase,
		"iteration": strconv.Itoa(iteration),
	}
	if stateDir != "" {
		params["state-dir"] = stateDir
	}

	descriptors, err := dispatch.NewCoordinator(targetRole, "verify").Build(batch, params)
	if err != nil && !errors.Is(err, dispatch.ErrNothingToDispatch) {
		return err
	}

	if len(descriptors) > 0 {
		fmt.Fprintf(os.Stderr, "Dispatching %d group(s) with %d worker(s)\n", len(descriptors), runWorkers)

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		executor := &runner.CommandExecutor{Command: execCommand}
		results := runner.NewRunner(executor, runWorkers, runRate, runBurst).Run(ctx, descriptors)

		failed := 0
		for _, res := range results {
			if res.Error != nil {
				failed++
				fmt.Fprintf(os.Stderr, "✗ group %s: %v\n", res.Descriptor.GroupKey, res.Error)
				continue
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "✓ group %s (%d items)\n", res.Descriptor.GroupKey, len(res.Descriptor.ItemIDs))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d dispatch group(s) failed", failed, len(results))
		}

		// Executors update the batch file from their own processes; the
		// read cache still holds the pre-dispatch bytes, so bypass it
		if batch, err = store.ReloadBatch(batchPhase); err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("batch for phase %s disappeared during dispatch", batchPhase)
		}
	} else {
		fmt.Fprintln(os.Stderr, "No TODO items remain; aggregating directly")
	}

	blocking := model.BlockingSeverities(iteration)
	if blockingCSV != "" {
		set, ok := model.ParseSeveritySet(blockingCSV)
		if !ok {
			return fmt.Errorf("invalid blocking severities: %s", blockingCSV)
		}
		blocking = set
	}

	result, err := verdict.New(blocking).Aggregate(batch.Items)
	if err != nil {
		var incomplete *verdict.IncompleteBatchError
		if errors.As(err, &incomplete) {
			fmt.Fprintf(os.Stderr, "INCOMPLETE: %s\n", incomplete.Error())
		}
		return err
	}

	if outputFormat == "json" {
		return render.JSON(os.Stdout, result)
	}
	render.Verdict(os.Stdout, result)
	return nil
}
