package league

import "fmt"

// League is a competition season that owns teams, maps and tournaments.
type League struct {
	ID                 string
	Name               string
	Active             bool
	SubmissionsEnabled bool
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}

// AcceptsChallenges reports whether new scrimmages may be requested.
func (l League) AcceptsChallenges() bool {
	return l.Active && l.SubmissionsEnabled
}
