package memory

import (
	"time"

	"github.com/riskibarqy/battlecode-league/internal/domain/gamemap"
	"github.com/riskibarqy/battlecode-league/internal/domain/league"
	"github.com/riskibarqy/battlecode-league/internal/domain/submission"
	"github.com/riskibarqy/battlecode-league/internal/domain/team"
	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
)

const (
	LeagueIDBattlecode2025 = "bc25"
	LeagueIDBattlecode2024 = "bc24"

	TournamentIDSprint1 = "bc25-sprint-1"
	TournamentIDFinal   = "bc25-final"
)

func SeedLeagues() []league.League {
	return []league.League{
		{ID: LeagueIDBattlecode2025, Name: "Battlecode 2025", Active: true, SubmissionsEnabled: true},
		{ID: LeagueIDBattlecode2024, Name: "Battlecode 2024", Active: false, SubmissionsEnabled: false},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "bc25-gophers", LeagueID: LeagueIDBattlecode2025, Name: "Gophers", TeamKey: "gophers", Avatar: "avatars/gophers.png", UserIDs: []string{"user-alice", "user-bob"}},
		{ID: "bc25-ducks", LeagueID: LeagueIDBattlecode2025, Name: "Rubber Ducks", TeamKey: "ducks", Avatar: "avatars/ducks.png", UserIDs: []string{"user-carol"}, AutoAcceptUnranked: true},
		{ID: "bc25-robots", LeagueID: LeagueIDBattlecode2025, Name: "Robots", TeamKey: "robots", UserIDs: []string{"user-dave"}, AutoAcceptRanked: true, AutoAcceptUnranked: true},
		{ID: "bc25-newbies", LeagueID: LeagueIDBattlecode2025, Name: "Newbies", TeamKey: "newbies", UserIDs: []string{"user-erin"}},
		{ID: "bc25-retired", LeagueID: LeagueIDBattlecode2025, Name: "Retired", TeamKey: "retired", UserIDs: []string{"user-frank"}, Deleted: true},
		{ID: "bc24-gophers", LeagueID: LeagueIDBattlecode2024, Name: "Gophers", TeamKey: "gophers", UserIDs: []string{"user-alice"}},
	}
}

func SeedSubmissions() []submission.Submission {
	base := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	return []submission.Submission{
		{ID: "sub-gophers-1", TeamID: "bc25-gophers", Index: 1, Name: "first light", SubmittedAt: base},
		{ID: "sub-gophers-2", TeamID: "bc25-gophers", Index: 2, Name: "rush", SubmittedAt: base.Add(24 * time.Hour)},
		{ID: "sub-ducks-1", TeamID: "bc25-ducks", Index: 1, Name: "quack", SubmittedAt: base.Add(2 * time.Hour)},
		{ID: "sub-robots-1", TeamID: "bc25-robots", Index: 1, Name: "beep", SubmittedAt: base.Add(3 * time.Hour)},
	}
}

func SeedMaps() []gamemap.Map {
	return []gamemap.Map{
		{ID: "bc25-map-shrine", LeagueID: LeagueIDBattlecode2025, Name: "Shrine"},
		{ID: "bc25-map-canals", LeagueID: LeagueIDBattlecode2025, Name: "Canals"},
		{ID: "bc25-map-secret", LeagueID: LeagueIDBattlecode2025, Name: "Secret", Hidden: true},
		{ID: "bc24-map-default", LeagueID: LeagueIDBattlecode2024, Name: "Default"},
	}
}

func SeedTournaments() []tournament.Tournament {
	gophers := tournament.TeamSummary{ID: "bc25-gophers", Name: "Gophers", Avatar: "avatars/gophers.png"}
	ducks := tournament.TeamSummary{ID: "bc25-ducks", Name: "Rubber Ducks", Avatar: "avatars/ducks.png"}
	robots := tournament.TeamSummary{ID: "bc25-robots", Name: "Robots"}
	newbies := tournament.TeamSummary{ID: "bc25-newbies", Name: "Newbies"}

	return []tournament.Tournament{
		{
			ID:       TournamentIDSprint1,
			LeagueID: LeagueIDBattlecode2025,
			Name:     "Sprint 1",
			Style:    tournament.StyleSingleElimination,
			Rounds: []tournament.Round{
				{
					ID:    "sprint1-r1",
					Label: "1",
					Games: []tournament.Game{
						{
							ID: "sprint1-r1-g1", Index: 1, RedTeam: gophers, BlueTeam: newbies,
							Matches: []tournament.Match{
								{ID: "sprint1-r1-g1-m1", Sequence: 1, WinnerTeamID: "bc25-gophers", Replay: "replays/sprint1-r1-g1-m1.bc25"},
								{ID: "sprint1-r1-g1-m2", Sequence: 2, WinnerTeamID: "bc25-gophers", Replay: "replays/sprint1-r1-g1-m2.bc25"},
							},
						},
						{
							ID: "sprint1-r1-g2", Index: 2, RedTeam: ducks, BlueTeam: robots,
							Matches: []tournament.Match{
								{ID: "sprint1-r1-g2-m1", Sequence: 1, WinnerTeamID: "bc25-robots", Replay: "replays/sprint1-r1-g2-m1.bc25"},
							},
						},
					},
				},
				{
					ID:    "sprint1-r2",
					Label: "2",
					Games: []tournament.Game{
						{ID: "sprint1-r2-g1", Index: 1, RedTeam: gophers, BlueTeam: robots},
					},
				},
			},
		},
		{
			ID:       TournamentIDFinal,
			LeagueID: LeagueIDBattlecode2025,
			Name:     "Final Tournament",
			Style:    tournament.StyleDoubleElimination,
			Hidden:   true,
		},
	}
}
