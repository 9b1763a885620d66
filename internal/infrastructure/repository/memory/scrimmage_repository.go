package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
)

type ScrimmageRepository struct {
	mu    sync.RWMutex
	items map[string]scrimmage.Scrimmage
}

func NewScrimmageRepository() *ScrimmageRepository {
	return &ScrimmageRepository{items: make(map[string]scrimmage.Scrimmage)}
}

func (r *ScrimmageRepository) Create(_ context.Context, item scrimmage.Scrimmage) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid scrimmage: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("scrimmage %s already exists", item.ID)
	}
	r.items[item.ID] = cloneScrimmage(item)
	return nil
}

func (r *ScrimmageRepository) GetByID(_ context.Context, leagueID, scrimmageID string) (scrimmage.Scrimmage, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[scrimmageID]
	if !ok || item.LeagueID != leagueID {
		return scrimmage.Scrimmage{}, false, nil
	}
	return cloneScrimmage(item), true, nil
}

func (r *ScrimmageRepository) ListByTeam(_ context.Context, leagueID, teamID string, limit int) ([]scrimmage.Scrimmage, error) {
	r.mu.RLock()
	out := make([]scrimmage.Scrimmage, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.Includes(teamID) {
			out = append(out, cloneScrimmage(item))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})

	return truncate(out, limit), nil
}

func (r *ScrimmageRepository) ListByStatus(_ context.Context, status scrimmage.Status, limit int) ([]scrimmage.Scrimmage, error) {
	r.mu.RLock()
	out := make([]scrimmage.Scrimmage, 0)
	for _, item := range r.items {
		if item.Status == status {
			out = append(out, cloneScrimmage(item))
		}
	}
	r.mu.RUnlock()

	// Oldest first so the dispatcher drains in request order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})

	return truncate(out, limit), nil
}

func (r *ScrimmageRepository) Transition(_ context.Context, t scrimmage.Transition) (scrimmage.Scrimmage, error) {
	if err := t.Validate(); err != nil {
		return scrimmage.Scrimmage{}, fmt.Errorf("invalid transition: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[t.ScrimmageID]
	if !ok {
		return scrimmage.Scrimmage{}, fmt.Errorf("%w: id=%s", scrimmage.ErrNotFound, t.ScrimmageID)
	}
	if current.Status != t.From {
		return scrimmage.Scrimmage{}, &scrimmage.StatusConflictError{
			ScrimmageID: t.ScrimmageID,
			Expected:    t.From,
			Current:     current.Status,
		}
	}

	updated := t.Apply(current)
	r.items[t.ScrimmageID] = updated
	return cloneScrimmage(updated), nil
}

func cloneScrimmage(item scrimmage.Scrimmage) scrimmage.Scrimmage {
	item.Replays = append([]string(nil), item.Replays...)
	return item
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
