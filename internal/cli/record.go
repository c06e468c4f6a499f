package cli

import (
	"fmt"
	"strings"

	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/state"
	"github.com/spf13/cobra"
)

var (
	recordItem   string
	recordStatus string
	recordNote   string
)

// recordCmd records one verified outcome through the store, which enforces
// the exactly-once transition
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a verified outcome for one batch item",
	Long: `Record applies one worker outcome to a batch item and persists the
batch. Items transition exactly once: recording over an item that already
has an outcome is rejected, so concurrent agents cannot flip each other's
results.

Dispatched verify agents call this once per item in their scope.

Example:
  verity record --state-dir ./state --phase impl-code --item QR-003 --status FAIL --note "score missing"`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().StringVar(&stateDir, "state-dir", "", "state directory path")
	recordCmd.Flags().StringVar(&phase, "phase", "", "phase name keying the batch file")
	recordCmd.Flags().StringVar(&recordItem, "item", "", "item ID to record (required)")
	recordCmd.Flags().StringVar(&recordStatus, "status", "", "outcome status: PASS, FAIL, or SKIP (required)")
	recordCmd.Flags().StringVar(&recordNote, "note", "", "one-line finding summary (required for FAIL)")
	_ = recordCmd.MarkFlagRequired("item")
	_ = recordCmd.MarkFlagRequired("status")
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	dir := stateDir
	if dir == "" {
		dir = cfg.State.Dir
	}
	batchPhase := phase
	if batchPhase == "" {
		batchPhase = cfg.Review.Phase
	}

	status := model.Status(strings.ToUpper(recordStatus))
	if !status.Terminal() {
		return fmt.Errorf("invalid outcome status %q (want %s, %s, or %s)",
			recordStatus, model.StatusPass, model.StatusFail, model.StatusSkip)
	}
	if status == model.StatusFail && recordNote == "" {
		return fmt.Errorf("a FAIL outcome requires --note describing the finding")
	}

	store := state.NewStore(dir, cfg.State.CacheTTL)
	if err := store.RecordOutcome(batchPhase, recordItem, status, recordNote); err != nil {
		return err
	}

	fmt.Printf("✓ %s recorded as %s\n", recordItem, status)
	return nil
}
