package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battlecode-league/internal/domain/team"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamSelectQuery = `
SELECT t.public_id,
       t.league_public_id,
       t.name,
       t.team_key,
       t.avatar,
       t.auto_accept_ranked,
       t.auto_accept_unranked,
       COALESCE(ARRAY_AGG(m.user_id ORDER BY m.id) FILTER (WHERE m.user_id IS NOT NULL), '{}') AS user_ids
FROM teams t
LEFT JOIN team_members m
       ON m.team_public_id = t.public_id
      AND m.deleted_at IS NULL
WHERE t.league_public_id = $1
  AND t.deleted_at IS NULL`

func (r *TeamRepository) ListByLeagueAndUser(ctx context.Context, leagueID, userID string) ([]team.Team, error) {
	query := teamSelectQuery + `
  AND EXISTS (
      SELECT 1
      FROM team_members x
      WHERE x.team_public_id = t.public_id
        AND x.user_id = $2
        AND x.deleted_at IS NULL
  )
GROUP BY t.id
ORDER BY t.id`

	var rows []teamRowModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, userID); err != nil {
		return nil, fmt.Errorf("select teams by league and user: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, leagueID, teamID string) (team.Team, bool, error) {
	query := teamSelectQuery + `
  AND t.public_id = $2
GROUP BY t.id`

	var row teamRowModel
	if err := r.db.GetContext(ctx, &row, query, leagueID, teamID); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}
	return teamFromRow(row), true, nil
}

func teamFromRow(row teamRowModel) team.Team {
	return team.Team{
		ID:                 row.PublicID,
		LeagueID:           row.LeaguePublicID,
		Name:               row.Name,
		TeamKey:            row.TeamKey,
		Avatar:             row.Avatar,
		UserIDs:            append([]string(nil), row.UserIDs...),
		AutoAcceptRanked:   row.AutoAcceptRanked,
		AutoAcceptUnranked: row.AutoAcceptUnranked,
	}
}
