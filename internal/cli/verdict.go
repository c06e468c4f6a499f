package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/opsverity/verity/internal/llm"
	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/render"
	"github.com/opsverity/verity/internal/state"
	"github.com/opsverity/verity/internal/verdict"
	"github.com/spf13/cobra"
)

var (
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// verdictCmd aggregates a verified batch directly, outside any workflow
var verdictCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Aggregate a verified batch into a single PASS/FAIL verdict",
	Long: `Verdict reads the persisted batch for a phase and reduces it under the
active severity gate: any blocking-severity FAIL fails the batch, items
outside the gate never affect the outcome, and items still TODO are an
incomplete batch - a signal to re-dispatch, not a verified failure.

Example:
  verity verdict --state-dir ./state --phase impl-code --iteration 3
  verity verdict --state-dir ./state --llm --llm-provider openai`,
	RunE: runVerdict,
}

func init() {
	rootCmd.AddCommand(verdictCmd)

	verdictCmd.Flags().StringVar(&stateDir, "state-dir", "", "state directory path")
	verdictCmd.Flags().StringVar(&phase, "phase", "", "phase name keying the batch file")
	verdictCmd.Flags().IntVar(&iteration, "iteration", model.IterationDefault, "verification loop iteration (1-indexed)")
	verdictCmd.Flags().StringVar(&blockingCSV, "blocking-severities", "", "override blocking severities (e.g. MUST,SHOULD)")
	verdictCmd.Flags().StringVar(&outputFormat, "format", "text", "output format (text or json)")

	// LLM flags
	verdictCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an LLM summary of the result")
	verdictCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	verdictCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runVerdict(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	dir := stateDir
	if dir == "" {
		dir = cfg.State.Dir
	}
	batchPhase := phase
	if batchPhase == "" {
		batchPhase = cfg.Review.Phase
	}

	if note := iterationLimitNote(cfg.Review.IterationLimit, iteration); note != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", note)
	}

	store := state.NewStore(dir, cfg.State.CacheTTL)
	batch, err := store.LoadBatch(batchPhase)
	if err != nil {
		return err
	}
	if batch == nil {
		// Missing required input: aggregation cannot proceed without a
		// batch; the caller must re-run the generation stages.
		return fmt.Errorf("no persisted batch for phase %s in %s: run the review generation steps first", batchPhase, dir)
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
			fmt.Fprintf(os.Stderr, "Re-dispatch the remaining groups before aggregating.\n")
		}
		return err
	}

	if outputFormat == "json" {
		if err := render.JSON(os.Stdout, result); err != nil {
			return err
		}
	} else {
		render.Verdict(os.Stdout, result)
	}

	if llmEnabled {
		if err := summarizeResult(cfg, batchPhase, result); err != nil {
			// The summary is presentation only; never fail a computed
			// verdict over it
			fmt.Fprintf(os.Stderr, "Warning: LLM summary failed: %v\n", err)
		}
	}
	return nil
}

// summarizeResult generates and prints the optional LLM summary
func summarizeResult(cfg *model.Config, batchPhase string, result *verdict.Result) error {
	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.Provider == "openai" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}
	if !summarizer.IsEnabled() {
		return fmt.Errorf("no LLM provider configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.LLM.Timeout)*time.Second)
	defer cancel()

	resp, err := summarizer.Summarize(ctx, batchPhase, iteration, *result)
	if err != nil {
		return err
	}

	fmt.Printf("Summary (%s, %d tokens):\n%s\n", resp.Model, resp.TokensUsed, resp.Summary)
	return nil
}
