package usecase

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/battlecode-league/internal/domain/league"
	"github.com/riskibarqy/battlecode-league/internal/domain/team"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

// Access names the kind of scrimmage operation being authorized.
type Access uint8

const (
	AccessRead Access = iota
	AccessCreate
	AccessTransition
)

func (a Access) String() string {
	switch a {
	case AccessCreate:
		return "create"
	case AccessTransition:
		return "transition"
	default:
		return "read"
	}
}

// TeamContext is the authorized caller: the league being acted on and the
// caller's team in it.
type TeamContext struct {
	League league.League
	Team   team.Team
	UserID string
}

type EligibilityResolver struct {
	teamRepo team.Repository
	logger   *logging.Logger
}

func NewEligibilityResolver(teamRepo team.Repository, logger *logging.Logger) *EligibilityResolver {
	if logger == nil {
		logger = logging.Default()
	}

	return &EligibilityResolver{
		teamRepo: teamRepo,
		logger:   logger,
	}
}

// ResolveTeam returns the user's non-deleted team in the league. More than
// one match is a data integrity violation and is never resolved by picking one.
func (r *EligibilityResolver) ResolveTeam(ctx context.Context, leagueID, userID string) (team.Team, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EligibilityResolver.ResolveTeam")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" {
		return team.Team{}, false, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if userID == "" {
		return team.Team{}, false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	teams, err := r.teamRepo.ListByLeagueAndUser(ctx, leagueID, userID)
	if err != nil {
		markSpanError(span, err)
		return team.Team{}, false, fmt.Errorf("list teams by league and user: %w", err)
	}

	switch len(teams) {
	case 0:
		return team.Team{}, false, nil
	case 1:
		return teams[0], true, nil
	default:
		teamIDs := make([]string, 0, len(teams))
		for _, item := range teams {
			teamIDs = append(teamIDs, item.ID)
		}
		err := fmt.Errorf("%w: %w", ErrInternalInconsistency,
			crerr.AssertionFailedf("user %s belongs to %d teams in league %s", userID, len(teams), leagueID))
		r.logger.ErrorContext(ctx, "user belongs to multiple teams",
			"league_id", leagueID,
			"user_id", userID,
			"team_ids", teamIDs,
		)
		markSpanError(span, err)
		return team.Team{}, false, err
	}
}

// Authorizer runs before every scrimmage entry point and produces the
// TeamContext the state machine operates on.
type Authorizer struct {
	leagueRepo league.Repository
	resolver   *EligibilityResolver
}

func NewAuthorizer(leagueRepo league.Repository, resolver *EligibilityResolver) *Authorizer {
	return &Authorizer{
		leagueRepo: leagueRepo,
		resolver:   resolver,
	}
}

func (a *Authorizer) Authorize(ctx context.Context, leagueID, userID string, access Access) (TeamContext, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Authorizer.Authorize")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return TeamContext{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := a.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		markSpanError(span, err)
		return TeamContext{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return TeamContext{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	switch access {
	case AccessCreate:
		if !item.AcceptsChallenges() {
			return TeamContext{}, fmt.Errorf("%w: league %s is not accepting scrimmage requests", ErrPermissionDenied, leagueID)
		}
	case AccessTransition:
		if !item.Active {
			return TeamContext{}, fmt.Errorf("%w: league %s is not active", ErrPermissionDenied, leagueID)
		}
	}

	member, ok, err := a.resolver.ResolveTeam(ctx, leagueID, userID)
	if err != nil {
		return TeamContext{}, err
	}
	if !ok {
		return TeamContext{}, fmt.Errorf("%w: user is not on a team in league %s", ErrPermissionDenied, leagueID)
	}

	return TeamContext{
		League: item,
		Team:   member,
		UserID: strings.TrimSpace(userID),
	}, nil
}
