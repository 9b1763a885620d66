package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/battlecode-league/internal/domain/series"
	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

// BracketFormat selects which consumer a bracket is shaped for.
type BracketFormat string

const (
	// BracketFormatReplay feeds the replay viewer: deciding matches only,
	// per-match winners, no avatars.
	BracketFormatReplay BracketFormat = "replay"
	// BracketFormatWebsite feeds the public bracket page: every match,
	// team avatars, no per-match winners.
	BracketFormatWebsite BracketFormat = "website"
)

func ParseBracketFormat(raw string) (BracketFormat, error) {
	switch BracketFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", BracketFormatWebsite:
		return BracketFormatWebsite, nil
	case BracketFormatReplay:
		return BracketFormatReplay, nil
	default:
		return "", fmt.Errorf("%w: unknown bracket format %q", ErrInvalidInput, raw)
	}
}

type Bracket struct {
	TournamentID string
	Name         string
	Style        tournament.Style
	Format       BracketFormat
	Rounds       []BracketRound
}

type BracketRound struct {
	Label string
	Games []BracketGame
}

type BracketTeam struct {
	ID     string
	Name   string
	Avatar string
}

type BracketGame struct {
	Index    int
	RedTeam  BracketTeam
	BlueTeam BracketTeam
	Replays  []string
	// WinnerIDs is set for the replay format only, aligned with Replays.
	WinnerIDs []string
	// WinnerID is nil while the game is undecided.
	WinnerID *string
}

type BracketService struct {
	tournamentRepo tournament.Repository
	rules          series.Rules
	logger         *logging.Logger
}

func NewBracketService(tournamentRepo tournament.Repository, logger *logging.Logger) *BracketService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BracketService{
		tournamentRepo: tournamentRepo,
		rules:          series.BestOfThree(),
		logger:         logger,
	}
}

// GetBracket rebuilds a tournament's bracket in the requested format.
// Hidden tournaments are reported exactly like missing ones.
func (s *BracketService) GetBracket(ctx context.Context, leagueID, tournamentID, format string) (Bracket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BracketService.GetBracket")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	tournamentID = strings.TrimSpace(tournamentID)
	if leagueID == "" {
		return Bracket{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if tournamentID == "" {
		return Bracket{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	bracketFormat, err := ParseBracketFormat(format)
	if err != nil {
		return Bracket{}, err
	}

	item, exists, err := s.tournamentRepo.GetByID(ctx, leagueID, tournamentID)
	if err != nil {
		markSpanError(span, err)
		return Bracket{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists || item.Hidden {
		return Bracket{}, fmt.Errorf("%w: tournament does not exist", ErrNotFound)
	}

	out := Bracket{
		TournamentID: item.ID,
		Name:         item.Name,
		Style:        item.Style,
		Format:       bracketFormat,
		Rounds:       make([]BracketRound, 0, len(item.Rounds)),
	}
	for _, round := range item.Rounds {
		games := make([]BracketGame, 0, len(round.Games))
		for _, game := range round.Games {
			games = append(games, s.buildGame(ctx, item.ID, round.Label, game, bracketFormat))
		}
		out.Rounds = append(out.Rounds, BracketRound{
			Label: round.Label,
			Games: games,
		})
	}

	return out, nil
}

func (s *BracketService) buildGame(
	ctx context.Context,
	tournamentID, roundLabel string,
	game tournament.Game,
	format BracketFormat,
) BracketGame {
	outcome := s.rules.Decide(game.Winners())
	if outcome.Anomalous() {
		s.logger.WarnContext(ctx, "bracket game disagrees with series rules",
			"tournament_id", tournamentID,
			"round", roundLabel,
			"game_index", game.Index,
			"anomaly", outcome.Anomaly,
		)
	}

	out := BracketGame{
		Index:    game.Index,
		RedTeam:  toBracketTeam(game.RedTeam, format),
		BlueTeam: toBracketTeam(game.BlueTeam, format),
	}
	if outcome.Decided {
		winner := outcome.WinnerID
		out.WinnerID = &winner
	}

	switch format {
	case BracketFormatReplay:
		prefix := game.Matches[:outcome.DecidingLength]
		out.Replays = make([]string, 0, len(prefix))
		out.WinnerIDs = make([]string, 0, len(prefix))
		for _, m := range prefix {
			out.Replays = append(out.Replays, m.Replay)
			out.WinnerIDs = append(out.WinnerIDs, m.WinnerTeamID)
		}
	default:
		out.Replays = make([]string, 0, len(game.Matches))
		for _, m := range game.Matches {
			out.Replays = append(out.Replays, m.Replay)
		}
	}

	return out
}

func toBracketTeam(v tournament.TeamSummary, format BracketFormat) BracketTeam {
	out := BracketTeam{ID: v.ID, Name: v.Name}
	if format == BracketFormatWebsite {
		out.Avatar = v.Avatar
	}
	return out
}
