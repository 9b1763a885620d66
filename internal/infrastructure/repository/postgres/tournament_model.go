package postgres

import "github.com/riskibarqy/battlecode-league/internal/domain/tournament"

type tournamentTableModel struct {
	PublicID       string `db:"public_id"`
	LeaguePublicID string `db:"league_public_id"`
	Name           string `db:"name"`
	Style          string `db:"style"`
	Hidden         bool   `db:"hidden"`
}

type tournamentRoundModel struct {
	PublicID string `db:"public_id"`
	Label    string `db:"label"`
}

type tournamentGameModel struct {
	PublicID       string `db:"public_id"`
	RoundPublicID  string `db:"round_public_id"`
	GameIndex      int    `db:"game_index"`
	RedTeamID      string `db:"red_team_public_id"`
	RedTeamName    string `db:"red_team_name"`
	RedTeamAvatar  string `db:"red_team_avatar"`
	BlueTeamID     string `db:"blue_team_public_id"`
	BlueTeamName   string `db:"blue_team_name"`
	BlueTeamAvatar string `db:"blue_team_avatar"`
}

type tournamentMatchModel struct {
	PublicID     string `db:"public_id"`
	GamePublicID string `db:"game_public_id"`
	Sequence     int    `db:"sequence"`
	WinnerTeamID string `db:"winner_team_public_id"`
	Replay       string `db:"replay"`
}

// assembleTournament nests rows that are already ordered by round, game
// index and match sequence.
func assembleTournament(
	row tournamentTableModel,
	rounds []tournamentRoundModel,
	games []tournamentGameModel,
	matches []tournamentMatchModel,
) tournament.Tournament {
	matchesByGame := make(map[string][]tournament.Match, len(games))
	for _, m := range matches {
		matchesByGame[m.GamePublicID] = append(matchesByGame[m.GamePublicID], tournament.Match{
			ID:           m.PublicID,
			Sequence:     m.Sequence,
			WinnerTeamID: m.WinnerTeamID,
			Replay:       m.Replay,
		})
	}

	gamesByRound := make(map[string][]tournament.Game, len(rounds))
	for _, g := range games {
		gamesByRound[g.RoundPublicID] = append(gamesByRound[g.RoundPublicID], tournament.Game{
			ID:       g.PublicID,
			Index:    g.GameIndex,
			RedTeam:  tournament.TeamSummary{ID: g.RedTeamID, Name: g.RedTeamName, Avatar: g.RedTeamAvatar},
			BlueTeam: tournament.TeamSummary{ID: g.BlueTeamID, Name: g.BlueTeamName, Avatar: g.BlueTeamAvatar},
			Matches:  matchesByGame[g.PublicID],
		})
	}

	out := tournament.Tournament{
		ID:       row.PublicID,
		LeagueID: row.LeaguePublicID,
		Name:     row.Name,
		Style:    tournament.Style(row.Style),
		Hidden:   row.Hidden,
		Rounds:   make([]tournament.Round, 0, len(rounds)),
	}
	for _, r := range rounds {
		out.Rounds = append(out.Rounds, tournament.Round{
			ID:    r.PublicID,
			Label: r.Label,
			Games: gamesByRound[r.PublicID],
		})
	}
	return out
}
