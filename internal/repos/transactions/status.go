package transactions

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// transitions is the status state machine. IsTerminal and CanRefund are
// derived from it.
var transitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusRefunded},
	StatusFailed:    nil,
	StatusRefunded:  nil,
}

// ParseStatus accepts the lowercase wire form, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}

	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string { return string(s) }

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminal reports whether no pipeline-driven transition leaves s.
// Completed only admits the out-of-pipeline refund edge.
func (s Status) IsTerminal() bool {
	if !s.Valid() {
		return false
	}

	for _, next := range transitions[s] {
		if next != StatusRefunded {
			return false
		}
	}

	return true
}

func (s Status) CanRefund() bool {
	return CanTransition(s, StatusRefunded)
}

// CheckTransition returns ErrInvalidTransition when from -> to is not allowed.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	return nil
}
