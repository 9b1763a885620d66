package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	// GetByID loads the tournament with its rounds, games and matches ordered.
	GetByID(ctx context.Context, leagueID, tournamentID string) (Tournament, bool, error)
	// AppendMatch stores m as the next match of the game only when the game
	// currently has expectedCount matches; otherwise ErrMatchConflict.
	AppendMatch(ctx context.Context, gameID string, expectedCount int, m Match) error
}
