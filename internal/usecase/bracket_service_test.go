package usecase

import (
	"testing"

	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/memory"
	tournamentmock "github.com/riskibarqy/battlecode-league/internal/mocks/domain/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBracketService_GetBracket_WebsiteFormat(t *testing.T) {
	t.Parallel()

	service := NewBracketService(memory.NewTournamentRepository(memory.SeedTournaments()), nil)

	got, err := service.GetBracket(t.Context(), memory.LeagueIDBattlecode2025, memory.TournamentIDSprint1, "")
	require.NoError(t, err)
	assert.Equal(t, BracketFormatWebsite, got.Format)
	require.Len(t, got.Rounds, 2)

	first := got.Rounds[0].Games[0]
	require.NotNil(t, first.WinnerID)
	assert.Equal(t, teamGophers, *first.WinnerID)
	assert.Len(t, first.Replays, 2)
	assert.Nil(t, first.WinnerIDs)
	assert.Equal(t, "avatars/gophers.png", first.RedTeam.Avatar)

	undecided := got.Rounds[0].Games[1]
	assert.Nil(t, undecided.WinnerID)
	assert.Equal(t, []string{"replays/sprint1-r1-g2-m1.bc25"}, undecided.Replays)

	unplayed := got.Rounds[1].Games[0]
	assert.Nil(t, unplayed.WinnerID)
	assert.Empty(t, unplayed.Replays)
}

func TestBracketService_GetBracket_ReplayFormat(t *testing.T) {
	t.Parallel()

	service := NewBracketService(memory.NewTournamentRepository(memory.SeedTournaments()), nil)

	got, err := service.GetBracket(t.Context(), memory.LeagueIDBattlecode2025, memory.TournamentIDSprint1, "REPLAY")
	require.NoError(t, err)
	assert.Equal(t, BracketFormatReplay, got.Format)

	first := got.Rounds[0].Games[0]
	assert.Equal(t, []string{teamGophers, teamGophers}, first.WinnerIDs)
	assert.Len(t, first.Replays, len(first.WinnerIDs))
	assert.Empty(t, first.RedTeam.Avatar)

	undecided := got.Rounds[0].Games[1]
	assert.Nil(t, undecided.WinnerID)
	assert.Equal(t, []string{teamRobots}, undecided.WinnerIDs)
}

func TestBracketService_GetBracket_ExtraMatchesAfterDecisionUsingMockery(t *testing.T) {
	t.Parallel()

	repo := tournamentmock.NewRepository(t)
	service := NewBracketService(repo, nil)

	item := tournament.Tournament{
		ID:       "t1",
		LeagueID: "bc25",
		Name:     "Sprint 2",
		Style:    tournament.StyleDoubleElimination,
		Rounds: []tournament.Round{{
			Label: "3A",
			Games: []tournament.Game{{
				ID:       "g1",
				Index:    0,
				RedTeam:  tournament.TeamSummary{ID: "red", Name: "Red", Avatar: "red.png"},
				BlueTeam: tournament.TeamSummary{ID: "blue", Name: "Blue", Avatar: "blue.png"},
				Matches: []tournament.Match{
					{ID: "m1", Sequence: 1, WinnerTeamID: "red", Replay: "m1"},
					{ID: "m2", Sequence: 2, WinnerTeamID: "red", Replay: "m2"},
					{ID: "m3", Sequence: 3, WinnerTeamID: "blue", Replay: "m3"},
				},
			}, {
				ID:       "g2",
				Index:    1,
				RedTeam:  tournament.TeamSummary{ID: "red", Name: "Red"},
				BlueTeam: tournament.TeamSummary{ID: "blue", Name: "Blue"},
				Matches: []tournament.Match{
					{ID: "m4", Sequence: 1, WinnerTeamID: "red", Replay: "m4"},
					{ID: "m5", Sequence: 2, WinnerTeamID: "blue", Replay: "m5"},
					{ID: "m6", Sequence: 3, WinnerTeamID: "blue", Replay: "m6"},
				},
			}},
		}},
	}
	repo.On("GetByID", mock.Anything, "bc25", "t1").Return(item, true, nil).Twice()

	replay, err := service.GetBracket(t.Context(), "bc25", "t1", "replay")
	require.NoError(t, err)
	game := replay.Rounds[0].Games[0]
	require.NotNil(t, game.WinnerID)
	assert.Equal(t, "red", *game.WinnerID)
	assert.Equal(t, []string{"m1", "m2"}, game.Replays)
	assert.Equal(t, []string{"red", "red"}, game.WinnerIDs)

	comeback := replay.Rounds[0].Games[1]
	require.NotNil(t, comeback.WinnerID)
	assert.Equal(t, "blue", *comeback.WinnerID)
	assert.Equal(t, []string{"m4", "m5", "m6"}, comeback.Replays)
	assert.Equal(t, []string{"red", "blue", "blue"}, comeback.WinnerIDs)

	website, err := service.GetBracket(t.Context(), "bc25", "t1", "website")
	require.NoError(t, err)
	game = website.Rounds[0].Games[0]
	assert.Equal(t, []string{"m1", "m2", "m3"}, game.Replays)
	assert.Equal(t, "red", *game.WinnerID)
	assert.Equal(t, "blue.png", game.BlueTeam.Avatar)

	comeback = website.Rounds[0].Games[1]
	require.NotNil(t, comeback.WinnerID)
	assert.Equal(t, "blue", *comeback.WinnerID)
	assert.Equal(t, []string{"m4", "m5", "m6"}, comeback.Replays)
	assert.Nil(t, comeback.WinnerIDs)
}

func TestBracketService_GetBracket_Errors(t *testing.T) {
	t.Parallel()

	service := NewBracketService(memory.NewTournamentRepository(memory.SeedTournaments()), nil)

	tests := []struct {
		name         string
		tournamentID string
		format       string
		wantErr      error
	}{
		{name: "hidden tournament", tournamentID: memory.TournamentIDFinal, wantErr: ErrNotFound},
		{name: "hidden tournament replay format", tournamentID: memory.TournamentIDFinal, format: "replay", wantErr: ErrNotFound},
		{name: "missing tournament", tournamentID: "bc25-nope", wantErr: ErrNotFound},
		{name: "unknown format", tournamentID: memory.TournamentIDSprint1, format: "pdf", wantErr: ErrInvalidInput},
		{name: "blank tournament", tournamentID: "", wantErr: ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := service.GetBracket(t.Context(), memory.LeagueIDBattlecode2025, tc.tournamentID, tc.format)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
