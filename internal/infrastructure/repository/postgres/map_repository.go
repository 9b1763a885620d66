package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battlecode-league/internal/domain/gamemap"
	qb "github.com/riskibarqy/battlecode-league/internal/platform/querybuilder"
)

type mapTableModel struct {
	PublicID       string `db:"public_id"`
	LeaguePublicID string `db:"league_public_id"`
	Name           string `db:"name"`
	Hidden         bool   `db:"hidden"`
}

type MapRepository struct {
	db *sqlx.DB
}

func NewMapRepository(db *sqlx.DB) *MapRepository {
	return &MapRepository{db: db}
}

func (r *MapRepository) GetVisible(ctx context.Context, leagueID, mapID string) (gamemap.Map, bool, error) {
	query, args, err := qb.Select("public_id", "league_public_id", "name", "hidden").From("maps").
		Where(
			qb.Eq("public_id", mapID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("hidden", false),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return gamemap.Map{}, false, fmt.Errorf("build get visible map query: %w", err)
	}

	var row mapTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gamemap.Map{}, false, nil
		}
		return gamemap.Map{}, false, fmt.Errorf("get visible map: %w", err)
	}

	return gamemap.Map{
		ID:       row.PublicID,
		LeagueID: row.LeaguePublicID,
		Name:     row.Name,
		Hidden:   row.Hidden,
	}, true, nil
}
