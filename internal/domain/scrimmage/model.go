package scrimmage

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound       = errors.New("scrimmage not found")
	ErrStatusConflict = errors.New("scrimmage status conflict")
)

// StatusConflictError is returned when a conditional transition finds the
// scrimmage in a different status than the caller observed.
type StatusConflictError struct {
	ScrimmageID string
	Expected    Status
	Current     Status
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("scrimmage %s is %s, expected %s", e.ScrimmageID, e.Current, e.Expected)
}

func (e *StatusConflictError) Unwrap() error {
	return ErrStatusConflict
}

// Scrimmage is a challenge between two teams of the same league.
type Scrimmage struct {
	ID               string
	LeagueID         string
	RedTeamID        string
	BlueTeamID       string
	MapID            string
	Ranked           bool
	RequestedBy      string
	Status           Status
	RedSubmissionID  string
	BlueSubmissionID string
	WinnerTeamID     string
	Replays          []string
	FailureReason    string
	RequestedAt      time.Time
	UpdatedAt        time.Time
}

func (s Scrimmage) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scrimmage id is required")
	}
	if s.LeagueID == "" {
		return fmt.Errorf("scrimmage league id is required")
	}
	if s.RedTeamID == "" || s.BlueTeamID == "" {
		return fmt.Errorf("scrimmage teams are required")
	}
	if s.RedTeamID == s.BlueTeamID {
		return fmt.Errorf("scrimmage teams must differ")
	}
	if !s.Includes(s.RequestedBy) {
		return fmt.Errorf("scrimmage requester %s is not red or blue", s.RequestedBy)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("scrimmage status %s is invalid", s.Status)
	}
	hasSubmissions := s.RedSubmissionID != "" && s.BlueSubmissionID != ""
	if s.Status == StatusPending && (s.RedSubmissionID != "" || s.BlueSubmissionID != "") {
		return fmt.Errorf("pending scrimmage cannot have bound submissions")
	}
	if s.boundAtQueue() && !hasSubmissions {
		return fmt.Errorf("scrimmage in status %s requires bound submissions", s.Status)
	}

	return nil
}

func (s Scrimmage) boundAtQueue() bool {
	switch s.Status {
	case StatusQueued, StatusRunning, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

func (s Scrimmage) Includes(teamID string) bool {
	return teamID != "" && (teamID == s.RedTeamID || teamID == s.BlueTeamID)
}

// InvitedTeamID is the team that did not request the scrimmage.
func (s Scrimmage) InvitedTeamID() string {
	if s.RequestedBy == s.RedTeamID {
		return s.BlueTeamID
	}
	return s.RedTeamID
}

// Transition is a conditional status change applied atomically by the repository.
type Transition struct {
	ScrimmageID      string
	From             Status
	To               Status
	RedSubmissionID  string
	BlueSubmissionID string
	WinnerTeamID     string
	Replays          []string
	FailureReason    string
	At               time.Time
}

func (t Transition) Validate() error {
	if t.ScrimmageID == "" {
		return fmt.Errorf("transition scrimmage id is required")
	}
	if !t.From.CanTransition(t.To) {
		return fmt.Errorf("transition %s -> %s is not allowed", t.From, t.To)
	}
	if t.To == StatusQueued && (t.RedSubmissionID == "" || t.BlueSubmissionID == "") {
		return fmt.Errorf("queued transition requires both submissions")
	}
	if t.To == StatusCompleted && t.WinnerTeamID == "" {
		return fmt.Errorf("completed transition requires a winner")
	}
	if t.At.IsZero() {
		return fmt.Errorf("transition time is required")
	}

	return nil
}

// Apply returns s with the transition's fields written. Callers must have
// checked that s.Status equals t.From.
func (t Transition) Apply(s Scrimmage) Scrimmage {
	s.Status = t.To
	s.UpdatedAt = t.At
	if t.To == StatusQueued {
		s.RedSubmissionID = t.RedSubmissionID
		s.BlueSubmissionID = t.BlueSubmissionID
	}
	if t.To == StatusCompleted {
		s.WinnerTeamID = t.WinnerTeamID
		s.Replays = append([]string(nil), t.Replays...)
	}
	if t.To == StatusFailed {
		s.FailureReason = t.FailureReason
	}
	return s
}
