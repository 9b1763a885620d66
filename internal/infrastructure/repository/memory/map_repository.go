package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/battlecode-league/internal/domain/gamemap"
)

type MapRepository struct {
	mu    sync.RWMutex
	items map[string]gamemap.Map
}

func NewMapRepository(maps []gamemap.Map) *MapRepository {
	items := make(map[string]gamemap.Map, len(maps))
	for _, m := range maps {
		items[m.ID] = m
	}
	return &MapRepository{items: items}
}

func (r *MapRepository) GetVisible(_ context.Context, leagueID, mapID string) (gamemap.Map, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[mapID]
	if !ok || m.LeagueID != leagueID || m.Hidden {
		return gamemap.Map{}, false, nil
	}
	return m, true, nil
}
