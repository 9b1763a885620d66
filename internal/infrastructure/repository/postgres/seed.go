package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the development league into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exec := func(label, query string, args map[string]any) error {
		bound, boundArgs, err := sqlx.Named(query, args)
		if err != nil {
			return fmt.Errorf("bind seed %s query: %w", label, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(bound), boundArgs...); err != nil {
			return fmt.Errorf("seed %s: %w", label, err)
		}
		return nil
	}

	for _, l := range memory.SeedLeagues() {
		if err := exec("league "+l.ID, `
INSERT INTO leagues (public_id, name, active, submissions_enabled)
VALUES (:public_id, :name, :active, :submissions_enabled)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":           l.ID,
			"name":                l.Name,
			"active":              l.Active,
			"submissions_enabled": l.SubmissionsEnabled,
		}); err != nil {
			return err
		}
	}

	for _, t := range memory.SeedTeams() {
		if err := exec("team "+t.ID, `
INSERT INTO teams (public_id, league_public_id, name, team_key, avatar, auto_accept_ranked, auto_accept_unranked, deleted_at)
VALUES (:public_id, :league_public_id, :name, :team_key, :avatar, :auto_accept_ranked, :auto_accept_unranked,
        CASE WHEN :deleted THEN NOW() ELSE NULL END)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":            t.ID,
			"league_public_id":     t.LeagueID,
			"name":                 t.Name,
			"team_key":             t.TeamKey,
			"avatar":               t.Avatar,
			"auto_accept_ranked":   t.AutoAcceptRanked,
			"auto_accept_unranked": t.AutoAcceptUnranked,
			"deleted":              t.Deleted,
		}); err != nil {
			return err
		}
		for _, userID := range t.UserIDs {
			if err := exec("team member "+userID, `
INSERT INTO team_members (team_public_id, user_id)
VALUES (:team_public_id, :user_id)
ON CONFLICT DO NOTHING`, map[string]any{
				"team_public_id": t.ID,
				"user_id":        userID,
			}); err != nil {
				return err
			}
		}
	}

	for _, s := range memory.SeedSubmissions() {
		if err := exec("submission "+s.ID, `
INSERT INTO submissions (public_id, team_public_id, submission_index, name, submitted_at)
VALUES (:public_id, :team_public_id, :submission_index, :name, :submitted_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":        s.ID,
			"team_public_id":   s.TeamID,
			"submission_index": s.Index,
			"name":             s.Name,
			"submitted_at":     s.SubmittedAt,
		}); err != nil {
			return err
		}
	}

	for _, m := range memory.SeedMaps() {
		if err := exec("map "+m.ID, `
INSERT INTO maps (public_id, league_public_id, name, hidden)
VALUES (:public_id, :league_public_id, :name, :hidden)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":        m.ID,
			"league_public_id": m.LeagueID,
			"name":             m.Name,
			"hidden":           m.Hidden,
		}); err != nil {
			return err
		}
	}

	for _, t := range memory.SeedTournaments() {
		if err := exec("tournament "+t.ID, `
INSERT INTO tournaments (public_id, league_public_id, name, style, hidden)
VALUES (:public_id, :league_public_id, :name, :style, :hidden)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":        t.ID,
			"league_public_id": t.LeagueID,
			"name":             t.Name,
			"style":            string(t.Style),
			"hidden":           t.Hidden,
		}); err != nil {
			return err
		}
		for order, round := range t.Rounds {
			if err := exec("round "+round.ID, `
INSERT INTO tournament_rounds (public_id, tournament_public_id, label, round_order)
VALUES (:public_id, :tournament_public_id, :label, :round_order)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
				"public_id":            round.ID,
				"tournament_public_id": t.ID,
				"label":                round.Label,
				"round_order":          order,
			}); err != nil {
				return err
			}
			for _, game := range round.Games {
				if err := exec("game "+game.ID, `
INSERT INTO tournament_games (public_id, round_public_id, game_index, red_team_public_id, blue_team_public_id)
VALUES (:public_id, :round_public_id, :game_index, :red_team_public_id, :blue_team_public_id)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
					"public_id":           game.ID,
					"round_public_id":     round.ID,
					"game_index":          game.Index,
					"red_team_public_id":  game.RedTeam.ID,
					"blue_team_public_id": game.BlueTeam.ID,
				}); err != nil {
					return err
				}
				for _, match := range game.Matches {
					if err := exec("match "+match.ID, `
INSERT INTO tournament_matches (public_id, game_public_id, sequence, winner_team_public_id, replay)
VALUES (:public_id, :game_public_id, :sequence, :winner_team_public_id, :replay)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
						"public_id":             match.ID,
						"game_public_id":        game.ID,
						"sequence":              match.Sequence,
						"winner_team_public_id": match.WinnerTeamID,
						"replay":                match.Replay,
					}); err != nil {
						return err
					}
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
