package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/battlecode-league/internal/domain/team"
)

type TeamRepository struct {
	mu            sync.RWMutex
	teamsByLeague map[string][]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	teamsByLeague := make(map[string][]team.Team)
	for _, item := range teams {
		teamsByLeague[item.LeagueID] = append(teamsByLeague[item.LeagueID], cloneTeam(item))
	}

	return &TeamRepository{teamsByLeague: teamsByLeague}
}

func (r *TeamRepository) ListByLeagueAndUser(_ context.Context, leagueID, userID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, 1)
	for _, item := range r.teamsByLeague[leagueID] {
		if item.Deleted || !item.HasMember(userID) {
			continue
		}
		out = append(out, cloneTeam(item))
	}

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, leagueID, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teamsByLeague[leagueID] {
		if item.ID == teamID && !item.Deleted {
			return cloneTeam(item), true, nil
		}
	}

	return team.Team{}, false, nil
}

func cloneTeam(item team.Team) team.Team {
	item.UserIDs = append([]string(nil), item.UserIDs...)
	return item
}
