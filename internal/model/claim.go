package model

import "fmt"

// Claim represents a single verifiable assertion about observed behavior,
// derived from a plan acceptance criterion and tagged with the evidence
// channel that can verify it
type Claim struct {
	Step           string    `json:"step"`               // Topology step label, "unknown" if uncorrelated
	Kind           ClaimKind `json:"kind"`               // Which evidence channel verifies this claim
	EvidenceRef    string    `json:"artifact,omitempty"` // Evidence artifact path, empty if no topology
	Condition      string    `json:"condition"`          // Human-authored pass condition
	FailurePattern string    `json:"failure_pattern"`    // Inverse of Condition; what failure looks like
	SearchHint     string    `json:"search,omitempty"`   // Optional lookup refinement for state/log claims
	Severity       Severity  `json:"severity"`           // Blocking priority
}

// Validate checks the structural invariants of an authored claim: a valid
// kind and severity, and condition with its inverse failure pattern both
// present. A claim that passes is safe to correlate and dispatch.
func (c Claim) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("invalid claim kind %q", c.Kind)
	}
	if !c.Severity.Valid() {
		return fmt.Errorf("invalid claim severity %q", c.Severity)
	}
	if c.Condition == "" {
		return fmt.Errorf("claim has no condition")
	}
	if c.FailurePattern == "" {
		return fmt.Errorf("claim %q has no failure pattern", c.Condition)
	}
	return nil
}

// ClaimKind categorizes which evidence channel verifies a claim
type ClaimKind string

const (
	KindVisual ClaimKind = "visual" // Screenshot comparison
	KindState  ClaimKind = "state"  // Structured state snapshot field check
	KindLog    ClaimKind = "log"    // Log output search (capture not yet implemented upstream)
)

// Valid reports whether the kind is one of the closed set
func (k ClaimKind) Valid() bool {
	switch k {
	case KindVisual, KindState, KindLog:
		return true
	}
	return false
}

// StepUnknown is the step label assigned to claims that could not be
// correlated with any topology entry
const StepUnknown = "unknown"

// BriefSchema is the schema tag expected in brief files
const BriefSchema = "verity-brief-v1"

// Brief is the claim specification input: an ordered list of claims
// produced by an upstream authoring process, consumed read-only
type Brief struct {
	Schema string  `json:"schema"` // Must equal BriefSchema
	Claims []Claim `json:"claims"`
}
