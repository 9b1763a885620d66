package postgres

import "time"

type leagueTableModel struct {
	ID                 int64      `db:"id"`
	PublicID           string     `db:"public_id"`
	Name               string     `db:"name"`
	Active             bool       `db:"active"`
	SubmissionsEnabled bool       `db:"submissions_enabled"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}
