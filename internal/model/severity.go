package model

import (
	"strconv"
	"strings"
)

// Severity represents a claim's blocking priority.
// Ordering is MUST > SHOULD > COULD: MUST claims block the verdict at every
// iteration, lower severities are de-escalated first under iteration pressure.
type Severity string

const (
	SeverityMust   Severity = "MUST"   // Acceptance criteria; a run cannot pass without them
	SeverityShould Severity = "SHOULD" // Behavioral outcomes; structural, worth fixing soon
	SeverityCould  Severity = "COULD"  // Cosmetic / nice-to-have; de-escalated first
)

// severityRank orders severities by blocking priority (lower = higher priority)
var severityRank = map[Severity]int{
	SeverityMust:   0,
	SeverityShould: 1,
	SeverityCould:  2,
}

// Valid reports whether the severity is one of the closed set
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Compare returns a negative value if s blocks with higher priority than
// other, zero if equal, positive otherwise
func (s Severity) Compare(other Severity) int {
	return severityRank[s] - severityRank[other]
}

// SeveritySet is a set of severities that currently block the verdict
type SeveritySet map[Severity]bool

// Has reports whether the severity is in the set
func (ss SeveritySet) Has(s Severity) bool {
	return ss[s]
}

// Equal reports whether two sets contain the same severities
func (ss SeveritySet) Equal(other SeveritySet) bool {
	if len(ss) != len(other) {
		return false
	}
	for s := range ss {
		if !other[s] {
			return false
		}
	}
	return true
}

// String renders the set in priority order, e.g. "MUST,SHOULD"
func (ss SeveritySet) String() string {
	ordered := []Severity{SeverityMust, SeverityShould, SeverityCould}
	var parts []string
	for _, s := range ordered {
		if ss[s] {
			parts = append(parts, string(s))
		}
	}
	return strings.Join(parts, ",")
}

// ParseSeveritySet parses a comma-separated severity list, ignoring empty
// entries. Unknown severities yield a nil set and false.
func ParseSeveritySet(raw string) (SeveritySet, bool) {
	set := SeveritySet{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s := Severity(strings.ToUpper(part))
		if !s.Valid() {
			return nil, false
		}
		set[s] = true
	}
	return set, true
}

// IterationLimit bounds the verification loop; progressive de-escalation
// guarantees termination well before it in practice
const IterationLimit = 5

// IterationDefault is the iteration used when the caller does not supply one
const IterationDefault = 1

// BlockingSeverities returns the severities that block the verdict at the
// given iteration. Blocking scope narrows as iterations increase, accepting
// progressively lower-severity defects rather than looping indefinitely:
//
//	iteration 1-2: MUST + SHOULD + COULD
//	iteration 3:   MUST + SHOULD
//	iteration 4+:  MUST only
//
// Iteration is 1-indexed; values below 1 are caller error and treated as 1.
func BlockingSeverities(iteration int) SeveritySet {
	switch {
	case iteration >= 4:
		return SeveritySet{SeverityMust: true}
	case iteration >= 3:
		return SeveritySet{SeverityMust: true, SeverityShould: true}
	default:
		return SeveritySet{SeverityMust: true, SeverityShould: true, SeverityCould: true}
	}
}

// IterationGuidance returns a user-facing message about the current
// iteration's blocking scope
func IterationGuidance(iteration int) string {
	return "iteration " + strconv.Itoa(iteration) + ": blocking on " + BlockingSeverities(iteration).String()
}
