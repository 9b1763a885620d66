package memory

import (
	"testing"
	"time"

	"github.com/riskibarqy/battlecode-league/internal/domain/submission"
	"github.com/riskibarqy/battlecode-league/internal/domain/team"
)

var (
	_ submission.Repository = (*SubmissionRepository)(nil)
	_ team.Repository       = (*TeamRepository)(nil)
)

func TestSubmissionRepository_LatestByTeams(t *testing.T) {
	t.Parallel()

	repo := NewSubmissionRepository(SeedSubmissions())
	at := time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC)
	if err := repo.Add(t.Context(), submission.Submission{ID: "sub-ducks-2", TeamID: "bc25-ducks", Index: 2, SubmittedAt: at}); err != nil {
		t.Fatalf("add submission: %v", err)
	}
	// Same timestamp, higher index wins.
	if err := repo.Add(t.Context(), submission.Submission{ID: "sub-ducks-3", TeamID: "bc25-ducks", Index: 3, SubmittedAt: at}); err != nil {
		t.Fatalf("add submission: %v", err)
	}

	latest, err := repo.LatestByTeams(t.Context(), []string{"bc25-gophers", "bc25-ducks", "bc25-newbies"})
	if err != nil {
		t.Fatalf("latest by teams: %v", err)
	}
	if got := latest["bc25-gophers"].ID; got != "sub-gophers-2" {
		t.Fatalf("expected sub-gophers-2, got %q", got)
	}
	if got := latest["bc25-ducks"].ID; got != "sub-ducks-3" {
		t.Fatalf("expected sub-ducks-3, got %q", got)
	}
	if _, ok := latest["bc25-newbies"]; ok {
		t.Fatalf("team without submissions must be absent")
	}
}

func TestSubmissionRepository_AddRejectsInvalid(t *testing.T) {
	t.Parallel()

	repo := NewSubmissionRepository(nil)
	if err := repo.Add(t.Context(), submission.Submission{ID: "sub-x", TeamID: "bc25-ducks"}); err == nil {
		t.Fatalf("expected error for submission without timestamp")
	}

	latest, err := repo.LatestByTeams(t.Context(), []string{"bc25-ducks"})
	if err != nil {
		t.Fatalf("latest by teams: %v", err)
	}
	if len(latest) != 0 {
		t.Fatalf("invalid submission must not be stored, got %v", latest)
	}
}

func TestTeamRepository_SkipsDeletedTeams(t *testing.T) {
	t.Parallel()

	repo := NewTeamRepository(SeedTeams())

	if _, ok, err := repo.GetByID(t.Context(), LeagueIDBattlecode2025, "bc25-retired"); err != nil || ok {
		t.Fatalf("deleted team must not be found: ok=%t err=%v", ok, err)
	}
	if _, ok, err := repo.GetByID(t.Context(), LeagueIDBattlecode2024, "bc25-gophers"); err != nil || ok {
		t.Fatalf("team must not be found in another league: ok=%t err=%v", ok, err)
	}

	teams, err := repo.ListByLeagueAndUser(t.Context(), LeagueIDBattlecode2025, "user-frank")
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("expected no teams for member of a deleted team, got %v", teams)
	}

	teams, err = repo.ListByLeagueAndUser(t.Context(), LeagueIDBattlecode2025, "user-alice")
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 1 || teams[0].ID != "bc25-gophers" {
		t.Fatalf("unexpected teams %v", teams)
	}
}
