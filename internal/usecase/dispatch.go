package usecase

import (
	"context"

	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
)

// MatchDispatcher hands a queued scrimmage to the match execution engine.
type MatchDispatcher interface {
	DispatchScrimmage(ctx context.Context, item scrimmage.Scrimmage) error
}

// NoopMatchDispatcher leaves queued scrimmages for the dispatch sweeper.
type NoopMatchDispatcher struct{}

func (NoopMatchDispatcher) DispatchScrimmage(context.Context, scrimmage.Scrimmage) error {
	return nil
}
