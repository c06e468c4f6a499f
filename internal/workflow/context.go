package workflow

import (
	"strconv"

	"github.com/opsverity/verity/internal/dispatch"
	"github.com/opsverity/verity/internal/model"
)

// Tier selects how deep the analysis machine examines evidence
type Tier string

const (
	TierCursory  Tier = "cursory"  // Visual claims only
	TierThorough Tier = "thorough" // All claim kinds
)

// Context carries everything a stage needs. The CLI/state layer loads
// persisted inputs into the context before invoking the machine, so the
// stages themselves stay pure: no process-wide state survives across
// stage boundaries.
type Context struct {
	StateDir  string
	Phase     string
	Iteration int
	Tier      Tier
	Role      string            // Executor role for dispatch descriptors
	Blocking  model.SeveritySet // Active severity gate output

	// Optional loaded inputs. Nil means absent, which is an error only
	// for stages that require them.
	Brief    *model.Brief
	Topology *model.Topology
	Batch    *model.Batch

	// ItemIDs scopes a verify run to a subset of batch items
	ItemIDs []string

	// Authoring parameters
	PlanFile   string
	Milestone  string
	OutputPath string
}

// Invocation builds the reproducible re-entry command for the given
// workflow and stage, carrying the context's named parameters
func (ctx *Context) Invocation(workflow string, stage int) dispatch.Invocation {
	params := map[string]string{}
	if ctx.StateDir != "" {
		params["state-dir"] = ctx.StateDir
	}
	if ctx.Phase != "" {
		params["phase"] = ctx.Phase
	}
	if ctx.Iteration > 0 {
		params["iteration"] = strconv.Itoa(ctx.Iteration)
	}
	if ctx.Tier != "" {
		params["tier"] = string(ctx.Tier)
	}
	if ctx.PlanFile != "" {
		params["plan-file"] = ctx.PlanFile
	}
	if ctx.Milestone != "" {
		params["milestone"] = ctx.Milestone
	}
	return dispatch.Invocation{
		Workflow: workflow,
		Step:     stage,
		Params:   params,
		ItemIDs:  ctx.ItemIDs,
	}
}

// EffectiveBlocking returns the context's severity override if present,
// else the gate output for the context's iteration
func (ctx *Context) EffectiveBlocking() model.SeveritySet {
	if len(ctx.Blocking) > 0 {
		return ctx.Blocking
	}
	iteration := ctx.Iteration
	if iteration < 1 {
		iteration = model.IterationDefault
	}
	return model.BlockingSeverities(iteration)
}

// ScopedItems returns the batch items selected by the ItemIDs filter, or
// all items when no filter is set. Order follows the batch.
func (ctx *Context) ScopedItems() []model.WorkItem {
	if ctx.Batch == nil {
		return nil
	}
	if len(ctx.ItemIDs) == 0 {
		return ctx.Batch.Items
	}
	wanted := make(map[string]bool, len(ctx.ItemIDs))
	for _, id := range ctx.ItemIDs {
		wanted[id] = true
	}
	var items []model.WorkItem
	for _, item := range ctx.Batch.Items {
		if wanted[item.ID] {
			items = append(items, item)
		}
	}
	return items
}
