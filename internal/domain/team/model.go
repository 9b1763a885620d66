package team

import (
	"fmt"
	"slices"
)

// MaxMembers is the largest roster a team may have.
const MaxMembers = 4

// Team is a group of users competing together inside one league.
type Team struct {
	ID                 string
	LeagueID           string
	Name               string
	TeamKey            string
	Avatar             string
	UserIDs            []string
	AutoAcceptRanked   bool
	AutoAcceptUnranked bool
	Deleted            bool
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if len(t.UserIDs) == 0 || len(t.UserIDs) > MaxMembers {
		return fmt.Errorf("team must have between 1 and %d members, got %d", MaxMembers, len(t.UserIDs))
	}

	return nil
}

// AutoAccepts reports whether incoming challenges of the given rankedness
// are accepted without a human decision.
func (t Team) AutoAccepts(ranked bool) bool {
	if ranked {
		return t.AutoAcceptRanked
	}
	return t.AutoAcceptUnranked
}

func (t Team) HasMember(userID string) bool {
	return slices.Contains(t.UserIDs, userID)
}
