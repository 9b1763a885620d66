package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battlecode-league/internal/domain/submission"
	qb "github.com/riskibarqy/battlecode-league/internal/platform/querybuilder"
)

type submissionTableModel struct {
	PublicID     string    `db:"public_id"`
	TeamPublicID string    `db:"team_public_id"`
	Index        int       `db:"submission_index"`
	Name         string    `db:"name"`
	SubmittedAt  time.Time `db:"submitted_at"`
}

type SubmissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// LatestByTeams reads every team's newest submission in one statement so
// both sides come from the same snapshot.
func (r *SubmissionRepository) LatestByTeams(ctx context.Context, teamIDs []string) (map[string]submission.Submission, error) {
	if len(teamIDs) == 0 {
		return map[string]submission.Submission{}, nil
	}

	ids := make([]any, 0, len(teamIDs))
	for _, id := range teamIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.Select("public_id", "team_public_id", "submission_index", "name", "submitted_at").
		DistinctOn("team_public_id").
		From("submissions").
		Where(
			qb.In("team_public_id", ids),
			qb.IsNull("deleted_at"),
		).
		OrderBy("team_public_id", "submitted_at DESC", "submission_index DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build latest submissions query: %w", err)
	}

	var rows []submissionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select latest submissions: %w", err)
	}

	out := make(map[string]submission.Submission, len(rows))
	for _, row := range rows {
		out[row.TeamPublicID] = submission.Submission{
			ID:          row.PublicID,
			TeamID:      row.TeamPublicID,
			Index:       row.Index,
			Name:        row.Name,
			SubmittedAt: row.SubmittedAt,
		}
	}
	return out, nil
}
