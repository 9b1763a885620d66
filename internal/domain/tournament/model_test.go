package tournament

import "testing"

func TestTournamentFindGame(t *testing.T) {
	t.Parallel()

	item := Tournament{
		ID: "t1",
		Rounds: []Round{
			{Label: "1", Games: []Game{{ID: "g0", Index: 0}, {ID: "g1", Index: 1}}},
			{Label: "3A", Games: []Game{{ID: "g2", Index: 0}}},
		},
	}

	got, ok := item.FindGame("3A", 0)
	if !ok || got.ID != "g2" {
		t.Fatalf("unexpected game: %+v ok=%t", got, ok)
	}
	if _, ok := item.FindGame("3A", 1); ok {
		t.Fatalf("expected missing game")
	}
}

func TestGameWinners(t *testing.T) {
	t.Parallel()

	game := Game{Matches: []Match{{Sequence: 1, WinnerTeamID: "a"}, {Sequence: 2, WinnerTeamID: "b"}}}
	winners := game.Winners()
	if len(winners) != 2 || winners[0] != "a" || winners[1] != "b" {
		t.Fatalf("unexpected winners: %v", winners)
	}
}
