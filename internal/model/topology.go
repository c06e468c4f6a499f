package model

// Topology is the external manifest mapping named workflow steps to their
// evidence artifact locations. It is optional input: a missing topology is
// a degraded-but-defined mode, never an error.
type Topology struct {
	Steps []TopologyStep `json:"steps"`
}

// TopologyStep describes one named step and the artifacts captured for it
type TopologyStep struct {
	Label     string    `json:"label"`               // Step label claims correlate against
	Directory string    `json:"directory,omitempty"` // Directory holding the step's artifacts
	Artifacts Artifacts `json:"artifacts"`
}

// Artifacts holds the evidence references captured for a step, one slot per
// evidence channel. Empty slots mean the channel was not captured.
type Artifacts struct {
	Screenshot string `json:"screenshot,omitempty"` // Visual evidence
	State      string `json:"gamestate,omitempty"`  // State snapshot evidence
	Log        string `json:"log,omitempty"`        // Log evidence (capture not yet implemented)
}

// ForKind returns the artifact reference for the given evidence channel
func (a Artifacts) ForKind(kind ClaimKind) string {
	switch kind {
	case KindVisual:
		return a.Screenshot
	case KindState:
		return a.State
	case KindLog:
		return a.Log
	}
	return ""
}

// FindStep returns the topology step with the given label, or nil
func (t *Topology) FindStep(label string) *TopologyStep {
	if t == nil {
		return nil
	}
	for i := range t.Steps {
		if t.Steps[i].Label == label {
			return &t.Steps[i]
		}
	}
	return nil
}
