package postgres

import "github.com/lib/pq"

type teamRowModel struct {
	PublicID           string         `db:"public_id"`
	LeaguePublicID     string         `db:"league_public_id"`
	Name               string         `db:"name"`
	TeamKey            string         `db:"team_key"`
	Avatar             string         `db:"avatar"`
	AutoAcceptRanked   bool           `db:"auto_accept_ranked"`
	AutoAcceptUnranked bool           `db:"auto_accept_unranked"`
	UserIDs            pq.StringArray `db:"user_ids"`
}
