package model

import "testing"

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusTodo, false},
		{StatusPass, true},
		{StatusFail, true},
		{StatusSkip, true},
		{Status("DONE"), false},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal(): expected %v, got %v", tt.status, tt.want, got)
		}
	}
}

func TestBatch_TodoItems(t *testing.T) {
	batch := &Batch{
		Schema: BatchSchema,
		Phase:  "impl-code",
		Items: []WorkItem{
			{ID: "QR-001", Status: StatusPass},
			{ID: "QR-002", Status: StatusTodo},
			{ID: "QR-003", Status: StatusFail},
			{ID: "QR-004", Status: StatusTodo},
		},
	}

	todo := batch.TodoItems()
	if len(todo) != 2 {
		t.Fatalf("expected 2 TODO items, got %d", len(todo))
	}
	if todo[0].ID != "QR-002" || todo[1].ID != "QR-004" {
		t.Errorf("expected batch order preserved, got %s, %s", todo[0].ID, todo[1].ID)
	}
}

func TestBatch_Find(t *testing.T) {
	batch := &Batch{
		Items: []WorkItem{
			{ID: "QR-001"},
			{ID: "QR-002"},
		},
	}

	if item := batch.Find("QR-002"); item == nil || item.ID != "QR-002" {
		t.Error("expected to find QR-002")
	}
	if item := batch.Find("QR-999"); item != nil {
		t.Errorf("expected nil for missing item, got %v", item)
	}

	// Find returns a pointer into the batch, so mutations stick
	batch.Find("QR-001").Status = StatusPass
	if batch.Items[0].Status != StatusPass {
		t.Error("expected Find to return a mutable reference")
	}
}

func TestClaimKind_Valid(t *testing.T) {
	for _, k := range []ClaimKind{KindVisual, KindState, KindLog} {
		if !k.Valid() {
			t.Errorf("expected %s to be valid", k)
		}
	}
	if ClaimKind("audio").Valid() {
		t.Error("expected unknown kind to be invalid")
	}
}

func TestArtifacts_ForKind(t *testing.T) {
	a := Artifacts{
		Screenshot: "shots/step-1.png",
		State:      "state/step-1.json",
	}

	tests := []struct {
		kind ClaimKind
		want string
	}{
		{KindVisual, "shots/step-1.png"},
		{KindState, "state/step-1.json"},
		{KindLog, ""},
		{ClaimKind("bogus"), ""},
	}

	for _, tt := range tests {
		if got := a.ForKind(tt.kind); got != tt.want {
			t.Errorf("ForKind(%s): expected %q, got %q", tt.kind, tt.want, got)
		}
	}
}

func TestTopology_FindStep(t *testing.T) {
	topo := &Topology{Steps: []TopologyStep{
		{Label: "clear-3-rows"},
		{Label: "pause-menu"},
	}}

	if step := topo.FindStep("pause-menu"); step == nil || step.Label != "pause-menu" {
		t.Error("expected to find pause-menu")
	}
	if step := topo.FindStep("missing"); step != nil {
		t.Error("expected nil for missing label")
	}

	var nilTopo *Topology
	if step := nilTopo.FindStep("anything"); step != nil {
		t.Error("expected nil-safe FindStep on nil topology")
	}
}
