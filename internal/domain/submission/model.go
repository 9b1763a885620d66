package submission

import (
	"fmt"
	"time"
)

// Submission is an immutable upload of bot code by a team.
type Submission struct {
	ID          string
	TeamID      string
	Index       int
	Name        string
	SubmittedAt time.Time
}

func (s Submission) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("submission id is required")
	}
	if s.TeamID == "" {
		return fmt.Errorf("submission team id is required")
	}
	if s.SubmittedAt.IsZero() {
		return fmt.Errorf("submission time is required")
	}

	return nil
}
