package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	qb "github.com/riskibarqy/battlecode-league/internal/platform/querybuilder"
)

type ScrimmageRepository struct {
	db *sqlx.DB
}

func NewScrimmageRepository(db *sqlx.DB) *ScrimmageRepository {
	return &ScrimmageRepository{db: db}
}

func (r *ScrimmageRepository) Create(ctx context.Context, item scrimmage.Scrimmage) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid scrimmage: %w", err)
	}

	query, args, err := qb.InsertModel("scrimmages", scrimmageToModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert scrimmage query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("scrimmage %s already exists: %w", item.ID, err)
		}
		return fmt.Errorf("insert scrimmage: %w", err)
	}
	return nil
}

func (r *ScrimmageRepository) GetByID(ctx context.Context, leagueID, scrimmageID string) (scrimmage.Scrimmage, bool, error) {
	query, args, err := qb.Select(scrimmageColumns).From("scrimmages").
		Where(
			qb.Eq("public_id", scrimmageID),
			qb.Eq("league_public_id", leagueID),
		).
		ToSQL()
	if err != nil {
		return scrimmage.Scrimmage{}, false, fmt.Errorf("build get scrimmage query: %w", err)
	}

	var row scrimmageTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scrimmage.Scrimmage{}, false, nil
		}
		return scrimmage.Scrimmage{}, false, fmt.Errorf("get scrimmage: %w", err)
	}
	return scrimmageFromModel(row), true, nil
}

func (r *ScrimmageRepository) ListByTeam(ctx context.Context, leagueID, teamID string, limit int) ([]scrimmage.Scrimmage, error) {
	query, args, err := qb.Select(scrimmageColumns).From("scrimmages").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Or(qb.Eq("red_team_public_id", teamID), qb.Eq("blue_team_public_id", teamID)),
		).
		OrderBy("requested_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scrimmages by team query: %w", err)
	}

	return r.selectMany(ctx, query, args)
}

func (r *ScrimmageRepository) ListByStatus(ctx context.Context, status scrimmage.Status, limit int) ([]scrimmage.Scrimmage, error) {
	query, args, err := qb.Select(scrimmageColumns).From("scrimmages").
		Where(qb.Eq("status", int16(status))).
		OrderBy("requested_at", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scrimmages by status query: %w", err)
	}

	return r.selectMany(ctx, query, args)
}

// Transition is a single conditional UPDATE keyed on the expected status.
// When no row matches, a follow-up read tells a missing scrimmage apart
// from one that already moved on.
func (r *ScrimmageRepository) Transition(ctx context.Context, t scrimmage.Transition) (scrimmage.Scrimmage, error) {
	if err := t.Validate(); err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("invalid transition: %w", err)
	}

	query, args, err := transitionQuery(t)
	if err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("build transition scrimmage query: %w", err)
	}

	var row scrimmageTableModel
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if !isNotFound(err) {
			return scrimmage.Scrimmage{}, fmt.Errorf("transition scrimmage: %w", err)
		}
		return scrimmage.Scrimmage{}, r.conflictFor(ctx, t)
	}

	return scrimmageFromModel(row), nil
}

func transitionQuery(t scrimmage.Transition) (string, []any, error) {
	update := qb.Update("scrimmages").
		Set("status", int16(t.To)).
		Set("updated_at", t.At)
	switch t.To {
	case scrimmage.StatusQueued:
		update.Set("red_submission_public_id", t.RedSubmissionID).
			Set("blue_submission_public_id", t.BlueSubmissionID)
	case scrimmage.StatusCompleted:
		replays := t.Replays
		if replays == nil {
			replays = []string{}
		}
		update.Set("winner_team_public_id", t.WinnerTeamID).
			Set("replays", pq.StringArray(replays))
	case scrimmage.StatusFailed:
		update.Set("failure_reason", t.FailureReason)
	}

	return update.
		Where(
			qb.Eq("public_id", t.ScrimmageID),
			qb.Eq("status", int16(t.From)),
		).
		Suffix("RETURNING " + scrimmageColumns).
		ToSQL()
}

func (r *ScrimmageRepository) conflictFor(ctx context.Context, t scrimmage.Transition) error {
	var current int16
	err := r.db.GetContext(ctx, &current, `SELECT status FROM scrimmages WHERE public_id = $1`, t.ScrimmageID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: id=%s", scrimmage.ErrNotFound, t.ScrimmageID)
		}
		return fmt.Errorf("read scrimmage status after failed transition: %w", err)
	}

	return &scrimmage.StatusConflictError{
		ScrimmageID: t.ScrimmageID,
		Expected:    t.From,
		Current:     scrimmage.Status(current),
	}
}

func (r *ScrimmageRepository) selectMany(ctx context.Context, query string, args []any) ([]scrimmage.Scrimmage, error) {
	var rows []scrimmageTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select scrimmages: %w", err)
	}

	out := make([]scrimmage.Scrimmage, 0, len(rows))
	for _, row := range rows {
		out = append(out, scrimmageFromModel(row))
	}
	return out, nil
}
