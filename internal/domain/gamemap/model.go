package gamemap

// Map is a playable arena. Hidden maps cannot be used for scrimmages.
type Map struct {
	ID       string
	LeagueID string
	Name     string
	Hidden   bool
}
