package tournament

import (
	"errors"
	"fmt"
)

var ErrMatchConflict = errors.New("tournament match conflict")

type Style string

const (
	StyleSingleElimination Style = "single_elimination"
	StyleDoubleElimination Style = "double_elimination"
)

// Tournament is a bracket of best-of-N games grouped in ordered rounds.
type Tournament struct {
	ID       string
	LeagueID string
	Name     string
	Style    Style
	Hidden   bool
	Rounds   []Round
}

// Round groups games played at the same bracket depth, e.g. "3A".
type Round struct {
	ID    string
	Label string
	Games []Game
}

type TeamSummary struct {
	ID     string
	Name   string
	Avatar string
}

// Game is one pairing inside a round, decided over up to BestOf matches.
type Game struct {
	ID       string
	Index    int
	RedTeam  TeamSummary
	BlueTeam TeamSummary
	Matches  []Match
}

type Match struct {
	ID           string
	Sequence     int
	WinnerTeamID string
	Replay       string
}

// Winners returns the winner of every recorded match in sequence order.
func (g Game) Winners() []string {
	out := make([]string, 0, len(g.Matches))
	for _, m := range g.Matches {
		out = append(out, m.WinnerTeamID)
	}
	return out
}

func (g Game) Includes(teamID string) bool {
	return teamID != "" && (teamID == g.RedTeam.ID || teamID == g.BlueTeam.ID)
}

// FindGame locates a game by its round label and index.
func (t Tournament) FindGame(roundLabel string, index int) (Game, bool) {
	for _, r := range t.Rounds {
		if r.Label != roundLabel {
			continue
		}
		for _, g := range r.Games {
			if g.Index == index {
				return g, true
			}
		}
	}
	return Game{}, false
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.Sequence < 1 {
		return fmt.Errorf("match sequence must be >= 1")
	}
	if m.WinnerTeamID == "" {
		return fmt.Errorf("match winner is required")
	}
	return nil
}
