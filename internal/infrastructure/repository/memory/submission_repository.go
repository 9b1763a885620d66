package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/battlecode-league/internal/domain/submission"
)

type SubmissionRepository struct {
	mu     sync.RWMutex
	byTeam map[string][]submission.Submission
}

func NewSubmissionRepository(items []submission.Submission) *SubmissionRepository {
	r := &SubmissionRepository{byTeam: make(map[string][]submission.Submission)}
	for _, item := range items {
		r.byTeam[item.TeamID] = append(r.byTeam[item.TeamID], item)
	}
	return r
}

func (r *SubmissionRepository) Add(_ context.Context, item submission.Submission) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid submission: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byTeam[item.TeamID] = append(r.byTeam[item.TeamID], item)
	return nil
}

func (r *SubmissionRepository) LatestByTeams(_ context.Context, teamIDs []string) (map[string]submission.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]submission.Submission, len(teamIDs))
	for _, teamID := range teamIDs {
		var latest submission.Submission
		found := false
		for _, item := range r.byTeam[teamID] {
			if !found || item.SubmittedAt.After(latest.SubmittedAt) ||
				(item.SubmittedAt.Equal(latest.SubmittedAt) && item.Index > latest.Index) {
				latest = item
				found = true
			}
		}
		if found {
			out[teamID] = latest
		}
	}

	return out, nil
}
