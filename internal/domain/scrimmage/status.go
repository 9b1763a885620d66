package scrimmage

import (
	"fmt"
	"strings"
)

// Status is the lifecycle position of a scrimmage.
type Status uint8

const (
	StatusPending Status = iota + 1
	StatusQueued
	StatusRunning
	StatusCompleted
	StatusRejected
	StatusCancelled
	StatusFailed
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusQueued:    "queued",
	StatusRunning:   "running",
	StatusCompleted: "completed",
	StatusRejected:  "rejected",
	StatusCancelled: "cancelled",
	StatusFailed:    "failed",
}

// transitions lists every allowed edge. Statuses without an entry are terminal.
var transitions = map[Status][]Status{
	StatusPending: {StatusQueued, StatusRejected, StatusCancelled},
	StatusQueued:  {StatusRunning, StatusCompleted, StatusFailed},
	StatusRunning: {StatusCompleted, StatusFailed},
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether a scrimmage in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for status, name := range statusNames {
		if name == value {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown scrimmage status %q", raw)
}
