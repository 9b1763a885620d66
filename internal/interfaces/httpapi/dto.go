package httpapi

import (
	"time"

	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
	"github.com/riskibarqy/battlecode-league/internal/usecase"
)

type createScrimmageRequest struct {
	RedTeamID  string `json:"red_team_id" validate:"required,max=64"`
	BlueTeamID string `json:"blue_team_id" validate:"required,max=64,nefield=RedTeamID"`
	MapID      string `json:"map_id" validate:"required,max=64"`
	Ranked     bool   `json:"ranked"`
}

type scrimmageResultRequest struct {
	MatchWinners []string `json:"match_winners" validate:"required,min=1,max=5,dive,required"`
	Replays      []string `json:"replays" validate:"max=5,dive,required"`
}

type scrimmageFailureRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type recordMatchRequest struct {
	Round     string `json:"round" validate:"required"`
	GameIndex int    `json:"game_index" validate:"min=0"`
	WinnerID  string `json:"winner_id" validate:"required"`
	Replay    string `json:"replay" validate:"required"`
}

type scrimmageDTO struct {
	ID               string    `json:"id"`
	LeagueID         string    `json:"league_id"`
	RedTeamID        string    `json:"red_team_id"`
	BlueTeamID       string    `json:"blue_team_id"`
	MapID            string    `json:"map_id"`
	Ranked           bool      `json:"ranked"`
	RequestedBy      string    `json:"requested_by"`
	Status           string    `json:"status"`
	RedSubmissionID  string    `json:"red_submission_id,omitempty"`
	BlueSubmissionID string    `json:"blue_submission_id,omitempty"`
	WinnerID         *string   `json:"winner_id,omitempty"`
	Replays          []string  `json:"replays"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	RequestedAt      time.Time `json:"requested_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func scrimmageToDTO(item scrimmage.Scrimmage) scrimmageDTO {
	out := scrimmageDTO{
		ID:               item.ID,
		LeagueID:         item.LeagueID,
		RedTeamID:        item.RedTeamID,
		BlueTeamID:       item.BlueTeamID,
		MapID:            item.MapID,
		Ranked:           item.Ranked,
		RequestedBy:      item.RequestedBy,
		Status:           item.Status.String(),
		RedSubmissionID:  item.RedSubmissionID,
		BlueSubmissionID: item.BlueSubmissionID,
		Replays:          item.Replays,
		FailureReason:    item.FailureReason,
		RequestedAt:      item.RequestedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
	}
	if out.Replays == nil {
		out.Replays = []string{}
	}
	if item.WinnerTeamID != "" {
		winner := item.WinnerTeamID
		out.WinnerID = &winner
	}
	return out
}

type bracketDTO struct {
	TournamentID string            `json:"tournament_id"`
	Name         string            `json:"name"`
	Style        string            `json:"style"`
	Format       string            `json:"format"`
	Rounds       []bracketRoundDTO `json:"rounds"`
}

// Games holds []replayGameDTO or []websiteGameDTO depending on the format.
type bracketRoundDTO struct {
	Label string `json:"label"`
	Games any    `json:"games"`
}

type bracketTeamDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type replayGameDTO struct {
	Index     int            `json:"index"`
	RedTeam   bracketTeamDTO `json:"red_team"`
	BlueTeam  bracketTeamDTO `json:"blue_team"`
	Replays   []string       `json:"replays"`
	WinnerIDs []string       `json:"winner_ids"`
	WinnerID  *string        `json:"winner_id,omitempty"`
}

type websiteGameDTO struct {
	Index    int            `json:"index"`
	RedTeam  bracketTeamDTO `json:"red_team"`
	BlueTeam bracketTeamDTO `json:"blue_team"`
	Replays  []string       `json:"replays"`
	WinnerID *string        `json:"winner_id,omitempty"`
}

func bracketToDTO(b usecase.Bracket) bracketDTO {
	out := bracketDTO{
		TournamentID: b.TournamentID,
		Name:         b.Name,
		Style:        string(b.Style),
		Format:       string(b.Format),
		Rounds:       make([]bracketRoundDTO, 0, len(b.Rounds)),
	}

	for _, round := range b.Rounds {
		dto := bracketRoundDTO{Label: round.Label}
		if b.Format == usecase.BracketFormatReplay {
			games := make([]replayGameDTO, 0, len(round.Games))
			for _, g := range round.Games {
				games = append(games, replayGameDTO{
					Index:     g.Index,
					RedTeam:   bracketTeamToDTO(g.RedTeam),
					BlueTeam:  bracketTeamToDTO(g.BlueTeam),
					Replays:   nonNil(g.Replays),
					WinnerIDs: nonNil(g.WinnerIDs),
					WinnerID:  g.WinnerID,
				})
			}
			dto.Games = games
		} else {
			games := make([]websiteGameDTO, 0, len(round.Games))
			for _, g := range round.Games {
				games = append(games, websiteGameDTO{
					Index:    g.Index,
					RedTeam:  bracketTeamToDTO(g.RedTeam),
					BlueTeam: bracketTeamToDTO(g.BlueTeam),
					Replays:  nonNil(g.Replays),
					WinnerID: g.WinnerID,
				})
			}
			dto.Games = games
		}
		out.Rounds = append(out.Rounds, dto)
	}

	return out
}

func bracketTeamToDTO(t usecase.BracketTeam) bracketTeamDTO {
	return bracketTeamDTO{ID: t.ID, Name: t.Name, Avatar: t.Avatar}
}

type tournamentMatchDTO struct {
	ID       string `json:"id"`
	Sequence int    `json:"sequence"`
	WinnerID string `json:"winner_id"`
	Replay   string `json:"replay"`
}

type tournamentGameDTO struct {
	ID         string               `json:"id"`
	Index      int                  `json:"index"`
	RedTeamID  string               `json:"red_team_id"`
	BlueTeamID string               `json:"blue_team_id"`
	Matches    []tournamentMatchDTO `json:"matches"`
}

func tournamentGameToDTO(g tournament.Game) tournamentGameDTO {
	out := tournamentGameDTO{
		ID:         g.ID,
		Index:      g.Index,
		RedTeamID:  g.RedTeam.ID,
		BlueTeamID: g.BlueTeam.ID,
		Matches:    make([]tournamentMatchDTO, 0, len(g.Matches)),
	}
	for _, m := range g.Matches {
		out.Matches = append(out.Matches, tournamentMatchDTO{
			ID:       m.ID,
			Sequence: m.Sequence,
			WinnerID: m.WinnerTeamID,
			Replay:   m.Replay,
		})
	}
	return out
}

type dispatchResultDTO struct {
	Total      int `json:"total"`
	Dispatched int `json:"dispatched"`
	Failed     int `json:"failed"`
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
