package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
)

const scrimmageColumns = "public_id, league_public_id, red_team_public_id, blue_team_public_id, map_public_id, ranked, " +
	"requested_by_team_public_id, status, red_submission_public_id, blue_submission_public_id, " +
	"winner_team_public_id, replays, failure_reason, requested_at, updated_at"

type scrimmageTableModel struct {
	PublicID               string         `db:"public_id"`
	LeaguePublicID         string         `db:"league_public_id"`
	RedTeamPublicID        string         `db:"red_team_public_id"`
	BlueTeamPublicID       string         `db:"blue_team_public_id"`
	MapPublicID            string         `db:"map_public_id"`
	Ranked                 bool           `db:"ranked"`
	RequestedByTeam        string         `db:"requested_by_team_public_id"`
	Status                 int16          `db:"status"`
	RedSubmissionPublicID  sql.NullString `db:"red_submission_public_id"`
	BlueSubmissionPublicID sql.NullString `db:"blue_submission_public_id"`
	WinnerTeamPublicID     sql.NullString `db:"winner_team_public_id"`
	Replays                pq.StringArray `db:"replays"`
	FailureReason          string         `db:"failure_reason"`
	RequestedAt            time.Time      `db:"requested_at"`
	UpdatedAt              time.Time      `db:"updated_at"`
}

func scrimmageToModel(item scrimmage.Scrimmage) scrimmageTableModel {
	replays := item.Replays
	if replays == nil {
		replays = []string{}
	}
	return scrimmageTableModel{
		PublicID:               item.ID,
		LeaguePublicID:         item.LeagueID,
		RedTeamPublicID:        item.RedTeamID,
		BlueTeamPublicID:       item.BlueTeamID,
		MapPublicID:            item.MapID,
		Ranked:                 item.Ranked,
		RequestedByTeam:        item.RequestedBy,
		Status:                 int16(item.Status),
		RedSubmissionPublicID:  nullString(item.RedSubmissionID),
		BlueSubmissionPublicID: nullString(item.BlueSubmissionID),
		WinnerTeamPublicID:     nullString(item.WinnerTeamID),
		Replays:                pq.StringArray(replays),
		FailureReason:          item.FailureReason,
		RequestedAt:            item.RequestedAt,
		UpdatedAt:              item.UpdatedAt,
	}
}

func scrimmageFromModel(row scrimmageTableModel) scrimmage.Scrimmage {
	return scrimmage.Scrimmage{
		ID:               row.PublicID,
		LeagueID:         row.LeaguePublicID,
		RedTeamID:        row.RedTeamPublicID,
		BlueTeamID:       row.BlueTeamPublicID,
		MapID:            row.MapPublicID,
		Ranked:           row.Ranked,
		RequestedBy:      row.RequestedByTeam,
		Status:           scrimmage.Status(row.Status),
		RedSubmissionID:  row.RedSubmissionPublicID.String,
		BlueSubmissionID: row.BlueSubmissionPublicID.String,
		WinnerTeamID:     row.WinnerTeamPublicID.String,
		Replays:          append([]string(nil), row.Replays...),
		FailureReason:    row.FailureReason,
		RequestedAt:      row.RequestedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
