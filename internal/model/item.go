package model

// Status tracks a work item through its lifecycle. Items are created TODO,
// mutated exactly once by the worker that verifies them, and never return
// to TODO.
type Status string

const (
	StatusTodo Status = "TODO" // Not yet verified
	StatusPass Status = "PASS" // Condition held
	StatusFail Status = "FAIL" // Condition violated or failure pattern triggered
	StatusSkip Status = "SKIP" // Deferred: no evidence channel, or severity not blocking
)

// Terminal reports whether the status is a worker-assigned outcome
func (s Status) Terminal() bool {
	return s == StatusPass || s == StatusFail || s == StatusSkip
}

// WorkItem is a unit of verification work dispatched for independent
// verification. It carries the claim fields plus batch-tracking identity.
type WorkItem struct {
	ID      string `json:"id"`                 // Unique within a batch
	Status  Status `json:"status"`             // TODO until a worker records an outcome
	GroupID string `json:"group_id,omitempty"` // Optional explicit partition key
	Note    string `json:"note,omitempty"`     // Worker-recorded finding summary

	Claim // Embedded claim fields (step, kind, condition, severity, ...)
}

// BatchSchema is the schema tag expected in persisted batch state files
const BatchSchema = "verity-batch-v1"

// Batch is the durable representation of one workflow run's items, keyed by
// phase name. It is owned exclusively by the coordinating process for the
// duration of the run and re-read at each stage boundary.
type Batch struct {
	Schema    string     `json:"schema"`
	Phase     string     `json:"phase"`
	Iteration int        `json:"iteration,omitempty"`
	Items     []WorkItem `json:"items"`
}

// TodoItems returns the items still awaiting verification, in batch order
func (b *Batch) TodoItems() []WorkItem {
	var todo []WorkItem
	for _, item := range b.Items {
		if item.Status == StatusTodo {
			todo = append(todo, item)
		}
	}
	return todo
}

// Find returns the item with the given ID, or nil
func (b *Batch) Find(id string) *WorkItem {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return &b.Items[i]
		}
	}
	return nil
}

// Verdict is the single outcome reduced from a batch of items under the
// active severity gate. It is always computed, never stored as item state.
type Verdict string

const (
	VerdictPass   Verdict = "PASS"
	VerdictFail   Verdict = "FAIL"
	VerdictIssues Verdict = "ISSUES" // Claim-style evidence findings short of hard failure
)
