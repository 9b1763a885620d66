package submission

import "context"

// Repository describes submission persistence needs from use cases.
type Repository interface {
	// LatestByTeams returns the newest submission of every requested team
	// that has one, read as a single consistent snapshot.
	LatestByTeams(ctx context.Context, teamIDs []string) (map[string]Submission, error)
}
