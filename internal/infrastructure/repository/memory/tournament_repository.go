package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
)

type TournamentRepository struct {
	mu    sync.RWMutex
	items map[string]tournament.Tournament
}

func NewTournamentRepository(items []tournament.Tournament) *TournamentRepository {
	r := &TournamentRepository{items: make(map[string]tournament.Tournament, len(items))}
	for _, item := range items {
		r.items[item.ID] = cloneTournament(item)
	}
	return r
}

func (r *TournamentRepository) GetByID(_ context.Context, leagueID, tournamentID string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[tournamentID]
	if !ok || item.LeagueID != leagueID {
		return tournament.Tournament{}, false, nil
	}
	return cloneTournament(item), true, nil
}

func (r *TournamentRepository) AppendMatch(_ context.Context, gameID string, expectedCount int, m tournament.Match) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid match: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		for ri := range item.Rounds {
			games := item.Rounds[ri].Games
			for gi := range games {
				if games[gi].ID != gameID {
					continue
				}
				if len(games[gi].Matches) != expectedCount {
					return fmt.Errorf("%w: game=%s has %d matches, expected %d",
						tournament.ErrMatchConflict, gameID, len(games[gi].Matches), expectedCount)
				}
				games[gi].Matches = append(games[gi].Matches, m)
				r.items[id] = item
				return nil
			}
		}
	}

	return fmt.Errorf("game %s not found", gameID)
}

func cloneTournament(item tournament.Tournament) tournament.Tournament {
	rounds := make([]tournament.Round, len(item.Rounds))
	for ri, round := range item.Rounds {
		games := make([]tournament.Game, len(round.Games))
		for gi, game := range round.Games {
			game.Matches = append([]tournament.Match(nil), game.Matches...)
			games[gi] = game
		}
		round.Games = games
		rounds[ri] = round
	}
	item.Rounds = rounds
	return item
}
