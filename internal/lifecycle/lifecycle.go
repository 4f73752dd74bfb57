// Package lifecycle defines the decision record status state machine.
package lifecycle

import "fmt"

// Status is one of the six lifecycle states of a decision record.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusProposed   Status = "proposed"
	StatusInReview   Status = "in_review"
	StatusAccepted   Status = "accepted"
	StatusDeprecated Status = "deprecated"
	StatusSuperseded Status = "superseded"
)

// transitions is the full edge list. Deprecated and superseded are
// terminal; everything absent here is rejected, including self-loops.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusProposed, StatusDeprecated},
	StatusProposed:   {StatusInReview, StatusDeprecated},
	StatusInReview:   {StatusAccepted, StatusDeprecated},
	StatusAccepted:   {StatusDeprecated, StatusSuperseded},
	StatusDeprecated: {},
	StatusSuperseded: {},
}

// Parse returns the status for a raw string, or false for anything
// outside the closed set.
func Parse(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusDraft, StatusProposed, StatusInReview, StatusAccepted, StatusDeprecated, StatusSuperseded:
		return Status(raw), true
	default:
		return "", false
	}
}

// Terminal reports whether the status has no outgoing transitions.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Validate returns nil when from → to is a permitted transition and an
// error naming the rejected pair otherwise.
func Validate(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", from, to)
}
