// Package domain defines the search entity and its lifecycle.
//
// Valid status graph:
//
//	pending ──► parsing ──► executing ──► polling ──► scoring ──► completed
//	    │           │            │            │           │
//	    └───────────┴────────────┴────────────┴───────────┴──► error
//
// completed and error are terminal states.
package domain

import "fmt"

// Status values mirror the search_status enum in the database.
type Status string

const (
	StatusPending   Status = "pending"
	StatusParsing   Status = "parsing"
	StatusExecuting Status = "executing"
	StatusPolling   Status = "polling"
	StatusScoring   Status = "scoring"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusParsing, StatusError},
	StatusParsing:   {StatusExecuting, StatusError},
	StatusExecuting: {StatusPolling, StatusError},
	StatusPolling:   {StatusScoring, StatusError},
	StatusScoring:   {StatusCompleted, StatusError},
	// completed and error are terminal, no outgoing transitions
}

// stageProgress is the floor progress value written at each stage boundary.
// Progress is monotonically non-decreasing within a run.
var stageProgress = map[Status]int{
	StatusPending:   0,
	StatusParsing:   10,
	StatusExecuting: 30,
	StatusPolling:   60,
	StatusScoring:   80,
	StatusCompleted: 100,
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusParsing, StatusExecuting, StatusPolling,
		StatusScoring, StatusCompleted, StatusError:
		return st, nil
	}
	return "", fmt.Errorf("unknown search status %q", s)
}

// CanTransition returns true when moving from → to is permitted by the
// state machine.
func CanTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}

// StageProgress returns the progress floor for a status. Error keeps whatever
// progress the run had reached.
func StageProgress(s Status) (int, bool) {
	p, ok := stageProgress[s]
	return p, ok
}
