package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/riskibarqy/battlecode-league/internal/domain/series"
	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/memory"
	tournamentmock "github.com/riskibarqy/battlecode-league/internal/mocks/domain/tournament"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMatchResultService(f *leagueFixture) *MatchResultService {
	return NewMatchResultService(
		f.scrimmages,
		f.tournaments,
		f.dispatcher,
		series.BestOfThree(),
		&sequenceIDGenerator{prefix: "match"},
		2,
		logging.NewNop(),
	)
}

func queuedScrimmage(t *testing.T, f *leagueFixture) scrimmage.Scrimmage {
	t.Helper()

	created := createPending(t, f)
	accepted, err := f.scrimmage.AcceptScrimmage(t.Context(), f.actor(t, "user-carol", AccessTransition), created.ID)
	require.NoError(t, err)
	return accepted
}

func TestMatchResultService_ReportScrimmageResult(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	service := newMatchResultService(f)
	item := queuedScrimmage(t, f)

	running, err := service.MarkScrimmageRunning(t.Context(), memory.LeagueIDBattlecode2025, item.ID)
	require.NoError(t, err)
	assert.Equal(t, scrimmage.StatusRunning, running.Status)

	done, err := service.ReportScrimmageResult(t.Context(), memory.LeagueIDBattlecode2025, item.ID, ScrimmageResultInput{
		MatchWinners: []string{teamDucks, teamGophers, teamDucks},
		Replays:      []string{"r1.bc25", " ", "r3.bc25"},
	})
	require.NoError(t, err)
	assert.Equal(t, scrimmage.StatusCompleted, done.Status)
	assert.Equal(t, teamDucks, done.WinnerTeamID)
	assert.Equal(t, []string{"r1.bc25", "r3.bc25"}, done.Replays)

	_, err = service.ReportScrimmageResult(t.Context(), memory.LeagueIDBattlecode2025, item.ID, ScrimmageResultInput{
		MatchWinners: []string{teamDucks, teamDucks},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMatchResultService_ReportScrimmageResult_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		winners []string
		wantErr error
	}{
		{name: "no winners", winners: nil, wantErr: ErrInvalidInput},
		{name: "undecided", winners: []string{teamGophers}, wantErr: ErrInvalidInput},
		{name: "outsider winner", winners: []string{teamRobots, teamRobots}, wantErr: ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newLeagueFixture(t)
			service := newMatchResultService(f)
			item := queuedScrimmage(t, f)

			_, err := service.ReportScrimmageResult(t.Context(), memory.LeagueIDBattlecode2025, item.ID, ScrimmageResultInput{
				MatchWinners: tc.winners,
			})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestMatchResultService_ReportScrimmageResult_AnomalousSeriesStillCompletes(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	service := newMatchResultService(f)
	item := queuedScrimmage(t, f)

	done, err := service.ReportScrimmageResult(t.Context(), memory.LeagueIDBattlecode2025, item.ID, ScrimmageResultInput{
		MatchWinners: []string{teamGophers, teamGophers, teamDucks},
	})
	require.NoError(t, err)
	assert.Equal(t, teamGophers, done.WinnerTeamID)
}

func TestMatchResultService_ReportScrimmageFailure(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	service := newMatchResultService(f)

	pending := createPending(t, f)
	_, err := service.ReportScrimmageFailure(t.Context(), memory.LeagueIDBattlecode2025, pending.ID, "boom")
	assert.ErrorIs(t, err, ErrConflict)

	item := queuedScrimmage(t, f)
	failed, err := service.ReportScrimmageFailure(t.Context(), memory.LeagueIDBattlecode2025, item.ID, "")
	require.NoError(t, err)
	assert.Equal(t, scrimmage.StatusFailed, failed.Status)
	assert.Equal(t, "match runner reported a failure", failed.FailureReason)

	_, err = service.MarkScrimmageRunning(t.Context(), memory.LeagueIDBattlecode2025, "scrim-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchResultService_RecordTournamentMatch(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	service := newMatchResultService(f)

	game, err := service.RecordTournamentMatch(t.Context(), memory.LeagueIDBattlecode2025, memory.TournamentIDSprint1, RecordMatchInput{
		RoundLabel:   "1",
		GameIndex:    2,
		WinnerTeamID: teamRobots,
		Replay:       "replays/sprint1-r1-g2-m2.bc25",
	})
	require.NoError(t, err)
	require.Len(t, game.Matches, 2)
	assert.Equal(t, 2, game.Matches[1].Sequence)

	_, err = service.RecordTournamentMatch(t.Context(), memory.LeagueIDBattlecode2025, memory.TournamentIDSprint1, RecordMatchInput{
		RoundLabel:   "1",
		GameIndex:    2,
		WinnerTeamID: teamDucks,
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, series.ErrAlreadyDecided)

	_, err = service.RecordTournamentMatch(t.Context(), memory.LeagueIDBattlecode2025, memory.TournamentIDSprint1, RecordMatchInput{
		RoundLabel:   "2",
		GameIndex:    1,
		WinnerTeamID: teamDucks,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.RecordTournamentMatch(t.Context(), memory.LeagueIDBattlecode2025, memory.TournamentIDSprint1, RecordMatchInput{
		RoundLabel:   "9",
		GameIndex:    1,
		WinnerTeamID: teamDucks,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchResultService_RecordTournamentMatch_ConcurrentAppendUsingMockery(t *testing.T) {
	t.Parallel()

	repo := tournamentmock.NewRepository(t)
	service := NewMatchResultService(nil, repo, nil, series.BestOfThree(), staticIDGenerator{id: "match-1"}, 1, nil)

	item := tournament.Tournament{
		ID:       "t1",
		LeagueID: "bc25",
		Rounds: []tournament.Round{{
			Label: "1",
			Games: []tournament.Game{{
				ID:       "g1",
				Index:    0,
				RedTeam:  tournament.TeamSummary{ID: "red"},
				BlueTeam: tournament.TeamSummary{ID: "blue"},
			}},
		}},
	}
	repo.On("GetByID", mock.Anything, "bc25", "t1").Return(item, true, nil).Once()
	repo.On("AppendMatch", mock.Anything, "g1", 0, mock.MatchedBy(func(m tournament.Match) bool {
		return m.Sequence == 1 && m.WinnerTeamID == "red"
	})).Return(fmt.Errorf("%w: game=g1", tournament.ErrMatchConflict)).Once()

	_, err := service.RecordTournamentMatch(t.Context(), "bc25", "t1", RecordMatchInput{RoundLabel: "1", GameIndex: 0, WinnerTeamID: "red"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMatchResultService_DispatchQueued(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	service := newMatchResultService(f)
	requestedAt := time.Date(2025, 1, 21, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		err := f.scrimmages.Create(t.Context(), scrimmage.Scrimmage{
			ID:               fmt.Sprintf("queued-%d", i),
			LeagueID:         memory.LeagueIDBattlecode2025,
			RedTeamID:        teamGophers,
			BlueTeamID:       teamRobots,
			MapID:            mapShrine,
			RequestedBy:      teamGophers,
			Status:           scrimmage.StatusQueued,
			RedSubmissionID:  "sub-gophers-2",
			BlueSubmissionID: "sub-robots-1",
			RequestedAt:      requestedAt.Add(time.Duration(i) * time.Minute),
			UpdatedAt:        requestedAt,
		})
		require.NoError(t, err)
	}
	f.dispatcher.failFor = map[string]error{"queued-2": errors.New("queue unavailable")}

	result, err := service.DispatchQueued(t.Context(), 0)
	require.NoError(t, err)
	assert.Equal(t, DispatchQueuedResult{Total: 3, Dispatched: 2, Failed: 1}, result)
	assert.ElementsMatch(t, []string{"queued-1", "queued-3"}, f.dispatcher.dispatched())

	empty, err := NewMatchResultService(memory.NewScrimmageRepository(), nil, nil, series.Rules{}, nil, 0, nil).DispatchQueued(t.Context(), 10)
	require.NoError(t, err)
	assert.Equal(t, DispatchQueuedResult{}, empty)
}
