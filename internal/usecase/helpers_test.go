package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type sequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.next.Add(1)), nil
}

type recordingDispatcher struct {
	mu      sync.Mutex
	ids     []string
	failFor map[string]error
}

func (d *recordingDispatcher) DispatchScrimmage(_ context.Context, item scrimmage.Scrimmage) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.failFor[item.ID]; err != nil {
		return err
	}
	d.ids = append(d.ids, item.ID)
	return nil
}

func (d *recordingDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.ids...)
}

type leagueFixture struct {
	leagues     *memory.LeagueRepository
	teams       *memory.TeamRepository
	submissions *memory.SubmissionRepository
	maps        *memory.MapRepository
	scrimmages  *memory.ScrimmageRepository
	tournaments *memory.TournamentRepository
	dispatcher  *recordingDispatcher
	authorizer  *Authorizer
	scrimmage   *ScrimmageService
}

func newLeagueFixture(t *testing.T) *leagueFixture {
	t.Helper()

	logger := logging.NewNop()
	f := &leagueFixture{
		leagues:     memory.NewLeagueRepository(memory.SeedLeagues()),
		teams:       memory.NewTeamRepository(memory.SeedTeams()),
		submissions: memory.NewSubmissionRepository(memory.SeedSubmissions()),
		maps:        memory.NewMapRepository(memory.SeedMaps()),
		scrimmages:  memory.NewScrimmageRepository(),
		tournaments: memory.NewTournamentRepository(memory.SeedTournaments()),
		dispatcher:  &recordingDispatcher{},
	}
	f.authorizer = NewAuthorizer(f.leagues, NewEligibilityResolver(f.teams, logger))
	f.scrimmage = NewScrimmageService(
		f.scrimmages,
		f.teams,
		f.submissions,
		f.maps,
		f.dispatcher,
		&sequenceIDGenerator{prefix: "scrim"},
		logger,
	)
	return f
}

func (f *leagueFixture) actor(t *testing.T, userID string, access Access) TeamContext {
	t.Helper()

	actor, err := f.authorizer.Authorize(t.Context(), memory.LeagueIDBattlecode2025, userID, access)
	if err != nil {
		t.Fatalf("authorize %s: %v", userID, err)
	}
	return actor
}
