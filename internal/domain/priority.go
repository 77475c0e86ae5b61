package domain

import (
	"slices"
	"strings"
)

// Priority is an optional, ordered task priority. The empty value means "not set".
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists the settable priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority normalizes raw input into a Priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p == PriorityNone {
		return PriorityNone, nil
	}
	if !slices.Contains(Priorities, p) {
		return PriorityNone, ErrInvalidPriority
	}
	return p, nil
}

// Valid reports whether p is unset or one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityNone || slices.Contains(Priorities, p)
}

// Rank orders priorities: 0 for unset, then 1 (low) through 4 (urgent).
func (p Priority) Rank() int {
	return slices.Index(Priorities, p) + 1
}

// Less reports whether p ranks below other.
func (p Priority) Less(other Priority) bool {
	return p.Rank() < other.Rank()
}

// Cycle steps through the settable priorities, wrapping at both ends.
// An unset priority cycles to medium.
func (p Priority) Cycle(delta int) Priority {
	idx := slices.Index(Priorities, p)
	if idx < 0 {
		return PriorityMedium
	}
	n := len(Priorities)
	idx = ((idx+delta)%n + n) % n
	return Priorities[idx]
}
