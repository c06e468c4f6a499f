// Package group partitions work items into dispatch groups for parallel
// fan-out. Grouping is deterministic and item-disjoint by construction,
// which is what lets dispatched groups run without shared state.
package group

import "github.com/opsverity/verity/internal/model"

// Groups maps a group key to the ordered item IDs assigned to it.
// Keys are either an item's explicit group ID or, for ungrouped items,
// the item's own ID (a singleton group).
type Groups map[string][]string

// Partition assigns every item to exactly one group. Items sharing a
// non-empty GroupID merge into one group; each remaining item becomes a
// singleton keyed by its own ID. Insertion order within a group preserves
// input order, and identical input always yields identical groups.
func Partition(items []model.WorkItem) Groups {
	groups := make(Groups, len(items))
	for _, item := range items {
		key := item.GroupID
		if key == "" {
			key = item.ID
		}
		groups[key] = append(groups[key], item.ID)
	}
	return groups
}

// Keys returns the group keys in deterministic order: the order in which
// each group first appears in the input. Dispatch order across groups is
// permitted to vary; this ordering exists for reproducible output.
func Keys(items []model.WorkItem) []string {
	seen := make(map[string]bool, len(items))
	var keys []string
	for _, item := range items {
		key := item.GroupID
		if key == "" {
			key = item.ID
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// Equal reports whether two groupings assign the same IDs, in the same
// order, to the same keys
func (g Groups) Equal(other Groups) bool {
	if len(g) != len(other) {
		return false
	}
	for key, ids := range g {
		otherIDs, ok := other[key]
		if !ok || len(ids) != len(otherIDs) {
			return false
		}
		for i := range ids {
			if ids[i] != otherIDs[i] {
				return false
			}
		}
	}
	return true
}
