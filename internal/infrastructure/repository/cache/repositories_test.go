package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/battlecode-league/internal/domain/gamemap"
	"github.com/riskibarqy/battlecode-league/internal/domain/league"
	leaguemock "github.com/riskibarqy/battlecode-league/internal/mocks/domain/league"
	basecache "github.com/riskibarqy/battlecode-league/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLeagueRepository_CachesHitsAndMisses(t *testing.T) {
	t.Parallel()

	next := leaguemock.NewRepository(t)
	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))

	next.On("GetByID", mock.Anything, "bc25").
		Return(league.League{ID: "bc25", Name: "Battlecode 2025", Active: true}, true, nil).
		Once()
	next.On("GetByID", mock.Anything, "bc99").
		Return(league.League{}, false, nil).
		Once()

	for range 3 {
		got, ok, err := repo.GetByID(t.Context(), "bc25")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Battlecode 2025", got.Name)

		_, ok, err = repo.GetByID(t.Context(), "bc99")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

type flakyMapRepository struct {
	calls int
}

func (r *flakyMapRepository) GetVisible(_ context.Context, leagueID, mapID string) (gamemap.Map, bool, error) {
	r.calls++
	if r.calls == 1 {
		return gamemap.Map{}, false, errors.New("timeout")
	}
	return gamemap.Map{ID: mapID, LeagueID: leagueID, Name: "Shrine"}, true, nil
}

func TestMapRepository_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	next := &flakyMapRepository{}
	repo := NewMapRepository(next, basecache.NewStore(time.Minute))

	_, _, err := repo.GetVisible(t.Context(), "bc25", "shrine")
	require.Error(t, err)

	got, ok, err := repo.GetVisible(t.Context(), "bc25", "shrine")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Shrine", got.Name)

	_, _, err = repo.GetVisible(t.Context(), "bc25", "shrine")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
