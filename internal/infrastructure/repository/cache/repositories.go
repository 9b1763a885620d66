package cache

import (
	"context"

	"github.com/riskibarqy/battlecode-league/internal/domain/gamemap"
	"github.com/riskibarqy/battlecode-league/internal/domain/league"
	basecache "github.com/riskibarqy/battlecode-league/internal/platform/cache"
)

// Only slow-changing reference data is cached. Team membership, submissions
// and scrimmages are read through on every request.

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return basecache.Lookup(ctx, r.cache, "league:id:"+leagueID, func(ctx context.Context) (league.League, bool, error) {
		return r.next.GetByID(ctx, leagueID)
	})
}

type MapRepository struct {
	next  gamemap.Repository
	cache *basecache.Store
}

func NewMapRepository(next gamemap.Repository, cache *basecache.Store) *MapRepository {
	return &MapRepository{next: next, cache: cache}
}

// GetVisible caches per league so equal map ids in different leagues never
// share an entry.
func (r *MapRepository) GetVisible(ctx context.Context, leagueID, mapID string) (gamemap.Map, bool, error) {
	return basecache.Lookup(ctx, r.cache, "map:visible:"+leagueID+":"+mapID, func(ctx context.Context) (gamemap.Map, bool, error) {
		return r.next.GetVisible(ctx, leagueID, mapID)
	})
}
