package team

import "context"

// Repository describes team persistence needs from use cases.
// Deleted teams are never returned.
type Repository interface {
	ListByLeagueAndUser(ctx context.Context, leagueID, userID string) ([]Team, error)
	GetByID(ctx context.Context, leagueID, teamID string) (Team, bool, error)
}
