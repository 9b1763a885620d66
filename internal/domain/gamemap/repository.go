package gamemap

import "context"

type Repository interface {
	// GetVisible returns the map only when it belongs to the league and is not hidden.
	GetVisible(ctx context.Context, leagueID, mapID string) (Map, bool, error)
}
