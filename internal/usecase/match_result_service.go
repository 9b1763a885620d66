package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/riskibarqy/battlecode-league/internal/domain/series"
	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
	idgen "github.com/riskibarqy/battlecode-league/internal/platform/id"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

const (
	defaultDispatchWorkers = 4
	defaultDispatchLimit   = 100
)

// ScrimmageResultInput is reported by the match runner once every match of
// a scrimmage has been played.
type ScrimmageResultInput struct {
	MatchWinners []string
	Replays      []string
}

// RecordMatchInput appends one played match to a tournament game.
type RecordMatchInput struct {
	RoundLabel   string
	GameIndex    int
	WinnerTeamID string
	Replay       string
}

type DispatchQueuedResult struct {
	Total      int
	Dispatched int
	Failed     int
}

// MatchResultService applies match runner callbacks to scrimmages and
// tournament games.
type MatchResultService struct {
	scrimmageRepo   scrimmage.Repository
	tournamentRepo  tournament.Repository
	dispatcher      MatchDispatcher
	scrimmageRules  series.Rules
	tournamentRules series.Rules
	idGen           idgen.Generator
	workers         int
	logger          *logging.Logger
	now             func() time.Time
}

func NewMatchResultService(
	scrimmageRepo scrimmage.Repository,
	tournamentRepo tournament.Repository,
	dispatcher MatchDispatcher,
	scrimmageRules series.Rules,
	idGen idgen.Generator,
	workers int,
	logger *logging.Logger,
) *MatchResultService {
	if logger == nil {
		logger = logging.Default()
	}
	if dispatcher == nil {
		dispatcher = NoopMatchDispatcher{}
	}
	if scrimmageRules.Validate() != nil {
		scrimmageRules = series.BestOfThree()
	}
	if workers < 1 {
		workers = defaultDispatchWorkers
	}

	return &MatchResultService{
		scrimmageRepo:   scrimmageRepo,
		tournamentRepo:  tournamentRepo,
		dispatcher:      dispatcher,
		scrimmageRules:  scrimmageRules,
		tournamentRules: series.BestOfThree(),
		idGen:           idGen,
		workers:         workers,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *MatchResultService) MarkScrimmageRunning(ctx context.Context, leagueID, scrimmageID string) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchResultService.MarkScrimmageRunning")
	defer span.End()

	item, err := s.loadScrimmage(ctx, leagueID, scrimmageID)
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}
	if item.Status != scrimmage.StatusQueued {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage is not queued (status=%s)", ErrConflict, item.Status)
	}

	updated, err := applyTransition(ctx, s.scrimmageRepo, scrimmage.Transition{
		ScrimmageID: item.ID,
		From:        scrimmage.StatusQueued,
		To:          scrimmage.StatusRunning,
		At:          s.now().UTC(),
	})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	s.logger.InfoContext(ctx, "scrimmage running", "scrimmage_id", updated.ID)
	return updated, nil
}

// ReportScrimmageResult completes a queued or running scrimmage. The winner
// is the first side to reach the configured number of match wins.
func (s *MatchResultService) ReportScrimmageResult(
	ctx context.Context,
	leagueID, scrimmageID string,
	input ScrimmageResultInput,
) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchResultService.ReportScrimmageResult")
	defer span.End()

	if len(input.MatchWinners) == 0 {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: match winners are required", ErrInvalidInput)
	}

	item, err := s.loadScrimmage(ctx, leagueID, scrimmageID)
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}
	if item.Status != scrimmage.StatusQueued && item.Status != scrimmage.StatusRunning {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage is not in progress (status=%s)", ErrConflict, item.Status)
	}

	winners := make([]string, 0, len(input.MatchWinners))
	for i, raw := range input.MatchWinners {
		winner := strings.TrimSpace(raw)
		if !item.Includes(winner) {
			return scrimmage.Scrimmage{}, fmt.Errorf("%w: match %d winner %q is not red or blue", ErrInvalidInput, i+1, winner)
		}
		winners = append(winners, winner)
	}

	outcome := s.scrimmageRules.Decide(winners)
	if !outcome.Decided {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: %d match(es) do not decide a best-of-%d scrimmage", ErrInvalidInput, len(winners), s.scrimmageRules.BestOf)
	}
	if outcome.Anomalous() {
		s.logger.WarnContext(ctx, "scrimmage result disagrees with series rules",
			"scrimmage_id", item.ID,
			"anomaly", outcome.Anomaly,
			"winner_team_id", outcome.WinnerID,
		)
	}

	updated, err := applyTransition(ctx, s.scrimmageRepo, scrimmage.Transition{
		ScrimmageID:  item.ID,
		From:         item.Status,
		To:           scrimmage.StatusCompleted,
		WinnerTeamID: outcome.WinnerID,
		Replays:      cleanReplays(input.Replays),
		At:           s.now().UTC(),
	})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	s.logger.InfoContext(ctx, "scrimmage completed",
		"scrimmage_id", updated.ID,
		"winner_team_id", updated.WinnerTeamID,
		"ranked", updated.Ranked,
	)
	return updated, nil
}

func (s *MatchResultService) ReportScrimmageFailure(ctx context.Context, leagueID, scrimmageID, reason string) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchResultService.ReportScrimmageFailure")
	defer span.End()

	item, err := s.loadScrimmage(ctx, leagueID, scrimmageID)
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}
	if item.Status != scrimmage.StatusQueued && item.Status != scrimmage.StatusRunning {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage is not in progress (status=%s)", ErrConflict, item.Status)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "match runner reported a failure"
	}

	updated, err := applyTransition(ctx, s.scrimmageRepo, scrimmage.Transition{
		ScrimmageID:   item.ID,
		From:          item.Status,
		To:            scrimmage.StatusFailed,
		FailureReason: reason,
		At:            s.now().UTC(),
	})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	s.logger.WarnContext(ctx, "scrimmage failed", "scrimmage_id", updated.ID, "reason", reason)
	return updated, nil
}

// RecordTournamentMatch appends the next match of a best-of-3 game. Games
// that are already decided or full reject further matches.
func (s *MatchResultService) RecordTournamentMatch(
	ctx context.Context,
	leagueID, tournamentID string,
	input RecordMatchInput,
) (tournament.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchResultService.RecordTournamentMatch")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	tournamentID = strings.TrimSpace(tournamentID)
	input.RoundLabel = strings.TrimSpace(input.RoundLabel)
	input.WinnerTeamID = strings.TrimSpace(input.WinnerTeamID)
	input.Replay = strings.TrimSpace(input.Replay)

	if leagueID == "" || tournamentID == "" {
		return tournament.Game{}, fmt.Errorf("%w: league id and tournament id are required", ErrInvalidInput)
	}
	if input.RoundLabel == "" {
		return tournament.Game{}, fmt.Errorf("%w: round is required", ErrInvalidInput)
	}
	if input.GameIndex < 0 {
		return tournament.Game{}, fmt.Errorf("%w: game index must be >= 0", ErrInvalidInput)
	}

	item, exists, err := s.tournamentRepo.GetByID(ctx, leagueID, tournamentID)
	if err != nil {
		markSpanError(span, err)
		return tournament.Game{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return tournament.Game{}, fmt.Errorf("%w: tournament does not exist", ErrNotFound)
	}

	game, ok := item.FindGame(input.RoundLabel, input.GameIndex)
	if !ok {
		return tournament.Game{}, fmt.Errorf("%w: game round=%s index=%d", ErrNotFound, input.RoundLabel, input.GameIndex)
	}
	if !game.Includes(input.WinnerTeamID) {
		return tournament.Game{}, fmt.Errorf("%w: winner %q does not play in this game", ErrInvalidInput, input.WinnerTeamID)
	}
	if err := s.tournamentRules.CheckAppend(game.Winners()); err != nil {
		return tournament.Game{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return tournament.Game{}, fmt.Errorf("generate match id: %w", err)
	}
	match := tournament.Match{
		ID:           matchID,
		Sequence:     len(game.Matches) + 1,
		WinnerTeamID: input.WinnerTeamID,
		Replay:       input.Replay,
	}

	if err := s.tournamentRepo.AppendMatch(ctx, game.ID, len(game.Matches), match); err != nil {
		if errors.Is(err, tournament.ErrMatchConflict) {
			return tournament.Game{}, fmt.Errorf("%w: game %s changed concurrently", ErrConflict, game.ID)
		}
		markSpanError(span, err)
		return tournament.Game{}, fmt.Errorf("append tournament match: %w", err)
	}
	game.Matches = append(game.Matches, match)

	outcome := s.tournamentRules.Decide(game.Winners())
	s.logger.InfoContext(ctx, "tournament match recorded",
		"tournament_id", tournamentID,
		"round", input.RoundLabel,
		"game_index", input.GameIndex,
		"sequence", match.Sequence,
		"decided", outcome.Decided,
	)
	return game, nil
}

// DispatchQueued re-sends queued scrimmages to the match queue. Failures are
// counted and logged; scrimmages stay queued for the next sweep.
func (s *MatchResultService) DispatchQueued(ctx context.Context, limit int) (DispatchQueuedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchResultService.DispatchQueued")
	defer span.End()

	if limit <= 0 {
		limit = defaultDispatchLimit
	}

	items, err := s.scrimmageRepo.ListByStatus(ctx, scrimmage.StatusQueued, limit)
	if err != nil {
		markSpanError(span, err)
		return DispatchQueuedResult{}, fmt.Errorf("list queued scrimmages: %w", err)
	}
	result := DispatchQueuedResult{Total: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(items)))
	if err != nil {
		return DispatchQueuedResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var dispatched atomic.Int32
	var failed atomic.Int32
	var workers sync.WaitGroup
	for _, item := range items {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if err := s.dispatcher.DispatchScrimmage(ctx, item); err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "redispatch scrimmage failed", "scrimmage_id", item.ID, "error", err)
				return
			}
			dispatched.Add(1)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return DispatchQueuedResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.Dispatched = int(dispatched.Load())
	result.Failed = int(failed.Load())
	s.logger.InfoContext(ctx, "queued scrimmages dispatched",
		"total", result.Total,
		"dispatched", result.Dispatched,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *MatchResultService) loadScrimmage(ctx context.Context, leagueID, scrimmageID string) (scrimmage.Scrimmage, error) {
	leagueID = strings.TrimSpace(leagueID)
	scrimmageID = strings.TrimSpace(scrimmageID)
	if leagueID == "" || scrimmageID == "" {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: league id and scrimmage id are required", ErrInvalidInput)
	}

	item, exists, err := s.scrimmageRepo.GetByID(ctx, leagueID, scrimmageID)
	if err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("get scrimmage: %w", err)
	}
	if !exists {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage does not exist", ErrNotFound)
	}
	return item, nil
}

func cleanReplays(replays []string) []string {
	out := make([]string, 0, len(replays))
	for _, r := range replays {
		if v := strings.TrimSpace(r); v != "" {
			out = append(out, v)
		}
	}
	return out
}
