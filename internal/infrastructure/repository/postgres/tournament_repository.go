package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
	qb "github.com/riskibarqy/battlecode-league/internal/platform/querybuilder"
	"golang.org/x/sync/errgroup"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(ctx context.Context, leagueID, tournamentID string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("public_id", "league_public_id", "name", "style", "hidden").From("tournaments").
		Where(
			qb.Eq("public_id", tournamentID),
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament: %w", err)
	}

	var (
		rounds  []tournamentRoundModel
		games   []tournamentGameModel
		matches []tournamentMatchModel
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		const q = `
SELECT public_id, label
FROM tournament_rounds
WHERE tournament_public_id = $1
ORDER BY round_order, id`
		if err := r.db.SelectContext(gCtx, &rounds, q, row.PublicID); err != nil {
			return fmt.Errorf("select tournament rounds: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		const q = `
SELECT g.public_id,
       g.round_public_id,
       g.game_index,
       g.red_team_public_id,
       rt.name AS red_team_name,
       rt.avatar AS red_team_avatar,
       g.blue_team_public_id,
       bt.name AS blue_team_name,
       bt.avatar AS blue_team_avatar
FROM tournament_games g
JOIN tournament_rounds r ON r.public_id = g.round_public_id
JOIN teams rt ON rt.public_id = g.red_team_public_id
JOIN teams bt ON bt.public_id = g.blue_team_public_id
WHERE r.tournament_public_id = $1
ORDER BY r.round_order, g.game_index`
		if err := r.db.SelectContext(gCtx, &games, q, row.PublicID); err != nil {
			return fmt.Errorf("select tournament games: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		const q = `
SELECT m.public_id,
       m.game_public_id,
       m.sequence,
       m.winner_team_public_id,
       m.replay
FROM tournament_matches m
JOIN tournament_games g ON g.public_id = m.game_public_id
JOIN tournament_rounds r ON r.public_id = g.round_public_id
WHERE r.tournament_public_id = $1
ORDER BY m.game_public_id, m.sequence`
		if err := r.db.SelectContext(gCtx, &matches, q, row.PublicID); err != nil {
			return fmt.Errorf("select tournament matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return tournament.Tournament{}, false, err
	}

	return assembleTournament(row, rounds, games, matches), true, nil
}

// AppendMatch locks the game row, checks the recorded match count and
// inserts the next match in one transaction. The (game, sequence) unique
// index backs the check against writers that skip the lock.
func (r *TournamentRepository) AppendMatch(ctx context.Context, gameID string, expectedCount int, m tournament.Match) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid match: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for append match: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var locked string
	if err := tx.GetContext(ctx, &locked, `SELECT public_id FROM tournament_games WHERE public_id = $1 FOR UPDATE`, gameID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("game %s not found", gameID)
		}
		return fmt.Errorf("lock tournament game: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM tournament_matches WHERE game_public_id = $1`, gameID); err != nil {
		return fmt.Errorf("count tournament matches: %w", err)
	}
	if count != expectedCount {
		return fmt.Errorf("%w: game=%s has %d matches, expected %d", tournament.ErrMatchConflict, gameID, count, expectedCount)
	}

	query, args, err := qb.InsertInto("tournament_matches").
		Columns("public_id", "game_public_id", "sequence", "winner_team_public_id", "replay").
		Values(m.ID, gameID, m.Sequence, m.WinnerTeamID, m.Replay).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert tournament match query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: game=%s sequence=%d already recorded", tournament.ErrMatchConflict, gameID, m.Sequence)
		}
		return fmt.Errorf("insert tournament match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append match tx: %w", err)
	}
	return nil
}
