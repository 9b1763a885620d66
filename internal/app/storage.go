package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/battlecode-league/internal/config"
	"github.com/riskibarqy/battlecode-league/internal/domain/gamemap"
	"github.com/riskibarqy/battlecode-league/internal/domain/league"
	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/riskibarqy/battlecode-league/internal/domain/submission"
	"github.com/riskibarqy/battlecode-league/internal/domain/team"
	"github.com/riskibarqy/battlecode-league/internal/domain/tournament"
	cacherepo "github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/battlecode-league/internal/platform/cache"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

const dbPingTimeout = 5 * time.Second

type repositories struct {
	leagues     league.Repository
	teams       team.Repository
	submissions submission.Repository
	maps        gamemap.Repository
	scrimmages  scrimmage.Repository
	tournaments tournament.Repository
}

func newMemoryRepositories() repositories {
	return repositories{
		leagues:     memory.NewLeagueRepository(memory.SeedLeagues()),
		teams:       memory.NewTeamRepository(memory.SeedTeams()),
		submissions: memory.NewSubmissionRepository(memory.SeedSubmissions()),
		maps:        memory.NewMapRepository(memory.SeedMaps()),
		scrimmages:  memory.NewScrimmageRepository(),
		tournaments: memory.NewTournamentRepository(memory.SeedTournaments()),
	}
}

func newPostgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		leagues:     postgres.NewLeagueRepository(db),
		teams:       postgres.NewTeamRepository(db),
		submissions: postgres.NewSubmissionRepository(db),
		maps:        postgres.NewMapRepository(db),
		scrimmages:  postgres.NewScrimmageRepository(db),
		tournaments: postgres.NewTournamentRepository(db),
	}
}

// withReadCache wraps league and map lookups in a TTL cache.
func (r repositories) withReadCache(ttl time.Duration) repositories {
	store := basecache.NewStore(ttl)
	r.leagues = cacherepo.NewLeagueRepository(r.leagues, store)
	r.maps = cacherepo.NewMapRepository(r.maps, store)
	return r
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// buildRepositories returns the configured storage and a close func for any
// resources it owns.
func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	noop := func() error { return nil }

	var repos repositories
	closeFn := noop
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, noop, err
		}
		if cfg.DBBootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return repositories{}, noop, err
			}
			logger.InfoContext(ctx, "bootstrap seed checked", "db_name", dbNameFromURL(cfg.DBURL))
		}
		repos = newPostgresRepositories(db)
		closeFn = db.Close
	default:
		repos = newMemoryRepositories()
	}

	if cfg.CacheEnabled {
		repos = repos.withReadCache(cfg.CacheTTL)
	}

	logger.InfoContext(ctx, "storage ready",
		"driver", cfg.StorageDriver,
		"cache_enabled", cfg.CacheEnabled,
	)
	return repos, closeFn, nil
}
