package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/battlecode-league/internal/domain/league"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
	}

	return &LeagueRepository{items: items}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

// Upsert replaces the stored league, used to toggle league flags.
func (r *LeagueRepository) Upsert(_ context.Context, item league.League) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
}
