package workflow

import (
	"fmt"

	"github.com/opsverity/verity/internal/model"
)

// NewVerifyMachine builds the workflow a dispatched agent runs against its
// item subset. Descriptors produced by the review dispatch stage re-enter
// this machine scoped via the item filter.
//
//	1. Read Items      - load the batch and select the scoped items
//	2. Verify Items    - per-item verification directives
//	3. Record Outcomes - status transition rules
func NewVerifyMachine() *Machine {
	return New("verify",
		Stage{Name: "Read Items", Run: verifyReadItems},
		Stage{Name: "Verify Items", Run: verifyItems},
		Stage{Name: "Record Outcomes", Run: verifyRecord},
	)
}

func verifyReadItems(ctx *Context, p *Payload) error {
	if ctx.Batch == nil {
		return ErrNoBatch
	}

	items := ctx.ScopedItems()
	p.Items = items
	p.Notes = append(p.Notes, fmt.Sprintf("%d item(s) in scope for this agent", len(items)))

	for _, id := range ctx.ItemIDs {
		if ctx.Batch.Find(id) == nil {
			p.Notes = append(p.Notes, fmt.Sprintf("item not found in batch: %s", id))
		}
	}
	return nil
}

func verifyItems(ctx *Context, p *Payload) error {
	if ctx.Batch == nil {
		return ErrNoBatch
	}

	for _, item := range ctx.ScopedItems() {
		if item.Status != model.StatusTodo {
			p.Notes = append(p.Notes, fmt.Sprintf("%s already %s; do not verify twice", item.ID, item.Status))
			continue
		}
		p.Items = append(p.Items, item)
	}
	p.Notes = append(p.Notes,
		"for each item, check the condition against the named artifact and watch for the failure pattern",
	)
	return nil
}

func verifyRecord(ctx *Context, p *Payload) error {
	if ctx.Batch == nil {
		return ErrNoBatch
	}

	phase := ctx.Batch.Phase
	p.Notes = append(p.Notes,
		fmt.Sprintf("record each verified item with: verity record --phase %s --item <id> --status %s|%s [--note <finding>]", phase, model.StatusPass, model.StatusFail),
		"a FAIL outcome requires --note with a one-line finding summary",
		fmt.Sprintf("items never return to %s; the record command rejects a second outcome for the same item", model.StatusTodo),
		"touch only the items in your scope; other groups own the rest",
	)
	return nil
}
