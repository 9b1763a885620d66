package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_Expires(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set("league:id:bc25", "a")
	if v, ok := store.Get("league:id:bc25"); !ok || v != "a" {
		t.Fatalf("expected fresh entry, got %v %t", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get("league:id:bc25"); ok {
		t.Fatalf("expected entry to expire")
	}
	if len(store.entries) != 0 {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestStore_ZeroTTLKeepsEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set("k", 1)
	store.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if _, ok := store.Get("k"); !ok {
		t.Fatalf("expected entry without ttl to survive")
	}
}

func TestStore_GetOrLoad_CallerCancellationDoesNotPoisonLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	release := make(chan struct{})
	started := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "loaded", nil
	}

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		_, err := store.GetOrLoad(ctx, "k", loader)
		errCh <- err
	}()

	<-started
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled caller to return context.Canceled, got %v", err)
	}

	waiter := make(chan any, 1)
	go func() {
		v, _ := store.GetOrLoad(t.Context(), "k", loader)
		waiter <- v
	}()
	close(release)

	if v := <-waiter; v != "loaded" {
		t.Fatalf("expected second caller to share the detached load, got %v", v)
	}
	if v, ok := store.Get("k"); !ok || v != "loaded" {
		t.Fatalf("expected load to be cached, got %v %t", v, ok)
	}
}

func TestLookup_CachesMisses(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	load := func(context.Context) (string, bool, error) {
		calls.Add(1)
		return "", false, nil
	}

	for range 3 {
		_, ok, err := Lookup(t.Context(), store, "league:id:missing", load)
		if err != nil || ok {
			t.Fatalf("expected cached miss, got ok=%t err=%v", ok, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestLookup_TypeMismatch(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set("k", 42)
	_, _, err := Lookup(t.Context(), store, "k", func(context.Context) (string, bool, error) {
		return "x", true, nil
	})
	if err == nil {
		t.Fatalf("expected error for a key holding another type")
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("db down")
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(t.Context(), "k", loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	v, err := store.GetOrLoad(t.Context(), "k", loader)
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to load ok, got %v %v", v, err)
	}
}
