package scrimmage

import "context"

// Repository describes scrimmage persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Scrimmage) error
	GetByID(ctx context.Context, leagueID, scrimmageID string) (Scrimmage, bool, error)
	// ListByTeam returns scrimmages where the team plays red or blue, newest first.
	ListByTeam(ctx context.Context, leagueID, teamID string, limit int) ([]Scrimmage, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Scrimmage, error)
	// Transition applies t only when the stored status equals t.From and
	// returns the updated scrimmage. A mismatch yields *StatusConflictError.
	Transition(ctx context.Context, t Transition) (Scrimmage, error)
}
