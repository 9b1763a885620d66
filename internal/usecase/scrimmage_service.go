package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/battlecode-league/internal/domain/gamemap"
	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/riskibarqy/battlecode-league/internal/domain/submission"
	"github.com/riskibarqy/battlecode-league/internal/domain/team"
	idgen "github.com/riskibarqy/battlecode-league/internal/platform/id"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

const defaultScrimmageListLimit = 50

// CreateScrimmageInput is the incoming payload for a scrimmage request.
type CreateScrimmageInput struct {
	RedTeamID  string
	BlueTeamID string
	MapID      string
	Ranked     bool
}

type ScrimmageService struct {
	scrimmageRepo  scrimmage.Repository
	teamRepo       team.Repository
	submissionRepo submission.Repository
	mapRepo        gamemap.Repository
	dispatcher     MatchDispatcher
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewScrimmageService(
	scrimmageRepo scrimmage.Repository,
	teamRepo team.Repository,
	submissionRepo submission.Repository,
	mapRepo gamemap.Repository,
	dispatcher MatchDispatcher,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ScrimmageService {
	if logger == nil {
		logger = logging.Default()
	}
	if dispatcher == nil {
		dispatcher = NoopMatchDispatcher{}
	}

	return &ScrimmageService{
		scrimmageRepo:  scrimmageRepo,
		teamRepo:       teamRepo,
		submissionRepo: submissionRepo,
		mapRepo:        mapRepo,
		dispatcher:     dispatcher,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

// CreateScrimmage requests a scrimmage on behalf of actor's team. The
// invited team's auto-accept setting decides whether it starts pending or queued.
func (s *ScrimmageService) CreateScrimmage(ctx context.Context, actor TeamContext, input CreateScrimmageInput) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrimmageService.CreateScrimmage")
	defer span.End()

	input.RedTeamID = strings.TrimSpace(input.RedTeamID)
	input.BlueTeamID = strings.TrimSpace(input.BlueTeamID)
	input.MapID = strings.TrimSpace(input.MapID)

	if err := requireTeamContext(actor); err != nil {
		return scrimmage.Scrimmage{}, err
	}
	if input.RedTeamID == "" || input.BlueTeamID == "" {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: red and blue team ids are required", ErrInvalidInput)
	}

	myTeamID := actor.Team.ID
	var otherTeamID string
	switch myTeamID {
	case input.RedTeamID:
		otherTeamID = input.BlueTeamID
	case input.BlueTeamID:
		otherTeamID = input.RedTeamID
	default:
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage does not include my team", ErrInvalidInput)
	}
	if input.RedTeamID == input.BlueTeamID {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: a team cannot scrimmage itself", ErrInvalidInput)
	}
	if input.MapID == "" {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: map id is required", ErrInvalidInput)
	}

	leagueID := actor.League.ID
	otherTeam, exists, err := s.teamRepo.GetByID(ctx, leagueID, otherTeamID)
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, fmt.Errorf("get requested team: %w", err)
	}
	if !exists {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: requested team does not exist", ErrNotFound)
	}

	if _, exists, err := s.mapRepo.GetVisible(ctx, leagueID, input.MapID); err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, fmt.Errorf("get map: %w", err)
	} else if !exists {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: requested map does not exist", ErrNotFound)
	}

	latest, err := s.submissionRepo.LatestByTeams(ctx, []string{input.RedTeamID, input.BlueTeamID})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, fmt.Errorf("get latest submissions: %w", err)
	}
	redSub, redOK := latest[input.RedTeamID]
	blueSub, blueOK := latest[input.BlueTeamID]
	if !redOK || !blueOK {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: teams do not have submissions", ErrInvalidInput)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("generate scrimmage id: %w", err)
	}

	now := s.now().UTC()
	item := scrimmage.Scrimmage{
		ID:          id,
		LeagueID:    leagueID,
		RedTeamID:   input.RedTeamID,
		BlueTeamID:  input.BlueTeamID,
		MapID:       input.MapID,
		Ranked:      input.Ranked,
		RequestedBy: myTeamID,
		Status:      scrimmage.StatusPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}
	if otherTeam.AutoAccepts(input.Ranked) {
		item.Status = scrimmage.StatusQueued
		item.RedSubmissionID = redSub.ID
		item.BlueSubmissionID = blueSub.ID
	}
	if err := item.Validate(); err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: %w", ErrInternalInconsistency, err)
	}

	if err := s.scrimmageRepo.Create(ctx, item); err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, fmt.Errorf("create scrimmage: %w", err)
	}

	s.logger.InfoContext(ctx, "scrimmage requested",
		"scrimmage_id", item.ID,
		"league_id", leagueID,
		"requested_by", myTeamID,
		"invited_team_id", otherTeamID,
		"ranked", item.Ranked,
		"status", item.Status.String(),
	)
	if item.Status == scrimmage.StatusQueued {
		s.dispatch(ctx, item)
	}

	return item, nil
}

// AcceptScrimmage binds both teams' latest submissions and queues the match.
func (s *ScrimmageService) AcceptScrimmage(ctx context.Context, actor TeamContext, scrimmageID string) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrimmageService.AcceptScrimmage")
	defer span.End()

	item, err := s.loadPendingDecision(ctx, actor, scrimmageID, decisionInvited, "accept")
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	latest, err := s.submissionRepo.LatestByTeams(ctx, []string{item.RedTeamID, item.BlueTeamID})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, fmt.Errorf("get latest submissions: %w", err)
	}
	redSub, redOK := latest[item.RedTeamID]
	blueSub, blueOK := latest[item.BlueTeamID]
	if !redOK || !blueOK {
		err := fmt.Errorf("%w: %w", ErrInternalInconsistency,
			crerr.AssertionFailedf("scrimmage %s accepted but a team has no submission (red=%t blue=%t)", item.ID, redOK, blueOK))
		s.logger.ErrorContext(ctx, "teams should have submissions if queued",
			"scrimmage_id", item.ID,
			"red_team_id", item.RedTeamID,
			"blue_team_id", item.BlueTeamID,
		)
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	updated, err := s.transition(ctx, scrimmage.Transition{
		ScrimmageID:      item.ID,
		From:             scrimmage.StatusPending,
		To:               scrimmage.StatusQueued,
		RedSubmissionID:  redSub.ID,
		BlueSubmissionID: blueSub.ID,
		At:               s.now().UTC(),
	})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	s.dispatch(ctx, updated)
	return updated, nil
}

func (s *ScrimmageService) RejectScrimmage(ctx context.Context, actor TeamContext, scrimmageID string) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrimmageService.RejectScrimmage")
	defer span.End()

	item, err := s.loadPendingDecision(ctx, actor, scrimmageID, decisionInvited, "reject")
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	updated, err := s.transition(ctx, scrimmage.Transition{
		ScrimmageID: item.ID,
		From:        scrimmage.StatusPending,
		To:          scrimmage.StatusRejected,
		At:          s.now().UTC(),
	})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	return updated, nil
}

func (s *ScrimmageService) CancelScrimmage(ctx context.Context, actor TeamContext, scrimmageID string) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrimmageService.CancelScrimmage")
	defer span.End()

	item, err := s.loadPendingDecision(ctx, actor, scrimmageID, decisionRequester, "cancel")
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	updated, err := s.transition(ctx, scrimmage.Transition{
		ScrimmageID: item.ID,
		From:        scrimmage.StatusPending,
		To:          scrimmage.StatusCancelled,
		At:          s.now().UTC(),
	})
	if err != nil {
		markSpanError(span, err)
		return scrimmage.Scrimmage{}, err
	}

	return updated, nil
}

func (s *ScrimmageService) GetScrimmage(ctx context.Context, actor TeamContext, scrimmageID string) (scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrimmageService.GetScrimmage")
	defer span.End()

	if err := requireTeamContext(actor); err != nil {
		return scrimmage.Scrimmage{}, err
	}
	return s.loadForTeam(ctx, actor, scrimmageID)
}

// ListScrimmages returns the scrimmages actor's team plays in, newest first.
func (s *ScrimmageService) ListScrimmages(ctx context.Context, actor TeamContext, limit int) ([]scrimmage.Scrimmage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrimmageService.ListScrimmages")
	defer span.End()

	if err := requireTeamContext(actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultScrimmageListLimit {
		limit = defaultScrimmageListLimit
	}

	items, err := s.scrimmageRepo.ListByTeam(ctx, actor.League.ID, actor.Team.ID, limit)
	if err != nil {
		markSpanError(span, err)
		return nil, fmt.Errorf("list scrimmages by team: %w", err)
	}

	return items, nil
}

type decisionActor uint8

const (
	decisionInvited decisionActor = iota
	decisionRequester
)

// loadPendingDecision checks the actor rule before the status rule so that
// an outgoing request is reported as such whatever its status.
func (s *ScrimmageService) loadPendingDecision(
	ctx context.Context,
	actor TeamContext,
	scrimmageID string,
	who decisionActor,
	verb string,
) (scrimmage.Scrimmage, error) {
	if err := requireTeamContext(actor); err != nil {
		return scrimmage.Scrimmage{}, err
	}

	item, err := s.loadForTeam(ctx, actor, scrimmageID)
	if err != nil {
		return scrimmage.Scrimmage{}, err
	}

	switch who {
	case decisionInvited:
		if item.InvitedTeamID() != actor.Team.ID {
			return scrimmage.Scrimmage{}, fmt.Errorf("%w: cannot %s an outgoing scrimmage", ErrPermissionDenied, verb)
		}
	case decisionRequester:
		if item.RequestedBy != actor.Team.ID {
			return scrimmage.Scrimmage{}, fmt.Errorf("%w: cannot %s an incoming scrimmage", ErrPermissionDenied, verb)
		}
	}

	if item.Status != scrimmage.StatusPending {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage is not pending (status=%s)", ErrConflict, item.Status)
	}

	return item, nil
}

func (s *ScrimmageService) loadForTeam(ctx context.Context, actor TeamContext, scrimmageID string) (scrimmage.Scrimmage, error) {
	scrimmageID = strings.TrimSpace(scrimmageID)
	if scrimmageID == "" {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage id is required", ErrInvalidInput)
	}

	item, exists, err := s.scrimmageRepo.GetByID(ctx, actor.League.ID, scrimmageID)
	if err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("get scrimmage: %w", err)
	}
	if !exists || !item.Includes(actor.Team.ID) {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage does not exist", ErrNotFound)
	}

	return item, nil
}

func (s *ScrimmageService) transition(ctx context.Context, t scrimmage.Transition) (scrimmage.Scrimmage, error) {
	updated, err := applyTransition(ctx, s.scrimmageRepo, t)
	if err != nil {
		return scrimmage.Scrimmage{}, err
	}

	s.logger.InfoContext(ctx, "scrimmage transitioned",
		"scrimmage_id", updated.ID,
		"from", t.From.String(),
		"to", t.To.String(),
	)
	return updated, nil
}

func (s *ScrimmageService) dispatch(ctx context.Context, item scrimmage.Scrimmage) {
	if err := s.dispatcher.DispatchScrimmage(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "dispatch scrimmage failed, left queued for sweeper",
			"scrimmage_id", item.ID,
			"error", err,
		)
	}
}

// applyTransition runs t as a single conditional write and translates
// repository conflicts into use case errors naming the current status.
func applyTransition(ctx context.Context, repo scrimmage.Repository, t scrimmage.Transition) (scrimmage.Scrimmage, error) {
	if err := t.Validate(); err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: %w", ErrInternalInconsistency, err)
	}

	updated, err := repo.Transition(ctx, t)
	if err == nil {
		return updated, nil
	}

	var conflict *scrimmage.StatusConflictError
	switch {
	case errors.As(err, &conflict):
		if t.From == scrimmage.StatusPending {
			return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage is not pending (status=%s)", ErrConflict, conflict.Current)
		}
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage is %s, expected %s", ErrConflict, conflict.Current, conflict.Expected)
	case errors.Is(err, scrimmage.ErrNotFound):
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: scrimmage does not exist", ErrNotFound)
	default:
		return scrimmage.Scrimmage{}, fmt.Errorf("transition scrimmage: %w", err)
	}
}

func requireTeamContext(actor TeamContext) error {
	if strings.TrimSpace(actor.League.ID) == "" || strings.TrimSpace(actor.Team.ID) == "" {
		return fmt.Errorf("%w: team context is required", ErrPermissionDenied)
	}
	return nil
}
