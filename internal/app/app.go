package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/battlecode-league/internal/config"
	"github.com/riskibarqy/battlecode-league/internal/domain/series"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/battlecode-league/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/battlecode-league/internal/platform/id"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
	"github.com/riskibarqy/battlecode-league/internal/usecase"
)

// principalCacheEntries bounds the introspection cache per process.
const principalCacheEntries = 10000

// Server is the assembled API server together with the resources it owns.
type Server struct {
	HTTP    *http.Server
	closers []func() error
}

// Close releases storage handles. Call it after the HTTP server has shut down.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, closeStorage, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build storage: %w", err)
	}

	ids := idgen.NewXIDGenerator()
	dispatcher := newMatchDispatcher(cfg, logger)

	authorizer := usecase.NewAuthorizer(repos.leagues, usecase.NewEligibilityResolver(repos.teams, logger))
	scrimmageSvc := usecase.NewScrimmageService(
		repos.scrimmages,
		repos.teams,
		repos.submissions,
		repos.maps,
		dispatcher,
		ids,
		logger,
	)
	resultSvc := usecase.NewMatchResultService(
		repos.scrimmages,
		repos.tournaments,
		dispatcher,
		series.Rules{BestOf: cfg.ScrimmageBestOf},
		ids,
		cfg.MatchDispatchWorkers,
		logger,
	)
	bracketSvc := usecase.NewBracketService(repos.tournaments, logger)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		cfg.AnubisCircuit,
		logger,
		anubis.WithPrincipalCache(cfg.AnubisPrincipalCacheTTL, principalCacheEntries),
	)

	handler := httpapi.NewHandler(authorizer, scrimmageSvc, resultSvc, bracketSvc, logger)
	router := httpapi.NewRouter(handler, anubisClient, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	return &Server{
		HTTP: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		closers: []func() error{closeStorage},
	}, nil
}

// newMatchDispatcher enqueues match jobs through QStash when the match queue
// is enabled. Otherwise queued scrimmages wait for the dispatch sweeper.
func newMatchDispatcher(cfg config.Config, logger *logging.Logger) usecase.MatchDispatcher {
	if !cfg.MatchQueueEnabled {
		logger.Info("match queue disabled", "reason", "MATCH_QUEUE_ENABLED=false")
		return usecase.NoopMatchDispatcher{}
	}

	publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   cfg.QStashCircuit,
	}, logger)

	logger.Info("match queue enabled",
		"target_base_url", cfg.QStashTargetBaseURL,
		"runner_path", cfg.MatchRunnerPath,
	)
	return jobqueue.NewScrimmageDispatcher(publisher, cfg.MatchRunnerPath)
}
