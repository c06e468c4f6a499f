// Package dispatch builds one self-contained descriptor per work group for
// an external executor to run in parallel. The coordinator only constructs
// descriptors; execution and status mutation happen outside the core.
package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/opsverity/verity/internal/group"
	"github.com/opsverity/verity/internal/model"
)

// ErrNothingToDispatch signals that no TODO items remain. Callers must
// short-circuit directly to aggregation instead of running an empty fan-out.
var ErrNothingToDispatch = errors.New("no TODO items to dispatch")

// Invocation is a reproducible re-entry into the stage machine, scoped to
// an item subset
type Invocation struct {
	Workflow string            `json:"workflow"` // Machine the executor re-enters
	Step     int               `json:"step"`
	Params   map[string]string `json:"params,omitempty"` // Named parameters (state-dir, iteration, ...)
	ItemIDs  []string          `json:"item_ids"`
}

// String renders the invocation as a command line
func (inv Invocation) String() string {
	var b strings.Builder
	b.WriteString("verity ")
	b.WriteString(inv.Workflow)
	b.WriteString(" --step ")
	b.WriteString(strconv.Itoa(inv.Step))
	// Stable parameter order keeps the rendered command reproducible
	for _, key := range sortedKeys(inv.Params) {
		fmt.Fprintf(&b, " --%s %s", key, inv.Params[key])
	}
	for _, id := range inv.ItemIDs {
		b.WriteString(" --item ")
		b.WriteString(id)
	}
	return b.String()
}

// Descriptor instructs an external executor to verify one group of items
// in parallel with other groups
type Descriptor struct {
	Role       string     `json:"role"`      // Target executor role, e.g. "quality-reviewer"
	GroupKey   string     `json:"group_key"` // Partition key the items share
	ItemIDs    []string   `json:"item_ids"`
	Invocation Invocation `json:"invocation"`
}

// Coordinator builds dispatch descriptors for a fixed role and workflow
type Coordinator struct {
	role     string
	workflow string
}

// NewCoordinator creates a coordinator targeting the given executor role
// and re-entry workflow
func NewCoordinator(role, workflow string) *Coordinator {
	return &Coordinator{role: role, workflow: workflow}
}

// Build produces one descriptor per group of TODO items, in first-seen
// group order. Returns ErrNothingToDispatch when the batch has no TODO
// items left.
func (c *Coordinator) Build(batch *model.Batch, params map[string]string) ([]Descriptor, error) {
	todo := batch.TodoItems()
	if len(todo) == 0 {
		return nil, ErrNothingToDispatch
	}

	groups := group.Partition(todo)
	keys := group.Keys(todo)

	descriptors := make([]Descriptor, 0, len(keys))
	for _, key := range keys {
		ids := groups[key]
		descriptors = append(descriptors, Descriptor{
			Role:     c.role,
			GroupKey: key,
			ItemIDs:  ids,
			Invocation: Invocation{
				Workflow: c.workflow,
				Step:     1,
				Params:   params,
				ItemIDs:  ids,
			},
		})
	}
	return descriptors, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
