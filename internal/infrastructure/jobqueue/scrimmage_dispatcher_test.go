package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedJob struct {
	path    string
	payload any
	delay   time.Duration
	dedupID string
}

type fakeQueue struct {
	jobs []recordedJob
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, path string, payload any, delay time.Duration, dedupID string) error {
	q.jobs = append(q.jobs, recordedJob{path: path, payload: payload, delay: delay, dedupID: dedupID})
	return q.err
}

func queuedScrimmage() scrimmage.Scrimmage {
	return scrimmage.Scrimmage{
		ID:               "s1",
		LeagueID:         "bc25",
		RedTeamID:        "bc25-gophers",
		BlueTeamID:       "bc25-ducks",
		MapID:            "bc25-map-shrine",
		Ranked:           true,
		Status:           scrimmage.StatusQueued,
		RedSubmissionID:  "sub-gophers-2",
		BlueSubmissionID: "sub-ducks-1",
	}
}

func TestScrimmageDispatcher_EnqueuesMatchJob(t *testing.T) {
	t.Parallel()

	queue := &fakeQueue{}
	d := NewScrimmageDispatcher(queue, "")

	require.NoError(t, d.DispatchScrimmage(t.Context(), queuedScrimmage()))
	require.Len(t, queue.jobs, 1)

	job := queue.jobs[0]
	assert.Equal(t, defaultMatchRunnerPath, job.path)
	assert.Equal(t, "scrimmage-s1", job.dedupID)
	assert.Zero(t, job.delay)
	assert.Equal(t, MatchJob{
		ScrimmageID:      "s1",
		LeagueID:         "bc25",
		RedTeamID:        "bc25-gophers",
		BlueTeamID:       "bc25-ducks",
		RedSubmissionID:  "sub-gophers-2",
		BlueSubmissionID: "sub-ducks-1",
		MapID:            "bc25-map-shrine",
		Ranked:           true,
		CallbackPath:     "/v1/internal/leagues/bc25/scrimmages/s1",
	}, job.payload)
}

func TestScrimmageDispatcher_Rejections(t *testing.T) {
	t.Parallel()

	pending := queuedScrimmage()
	pending.Status = scrimmage.StatusPending

	unbound := queuedScrimmage()
	unbound.BlueSubmissionID = ""

	queue := &fakeQueue{}
	d := NewScrimmageDispatcher(queue, "/custom")
	assert.Error(t, d.DispatchScrimmage(t.Context(), pending))
	assert.Error(t, d.DispatchScrimmage(t.Context(), unbound))
	assert.Empty(t, queue.jobs)
}

func TestScrimmageDispatcher_WrapsQueueError(t *testing.T) {
	t.Parallel()

	boom := errors.New("queue down")
	d := NewScrimmageDispatcher(&fakeQueue{err: boom}, "/custom")

	err := d.DispatchScrimmage(t.Context(), queuedScrimmage())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "dispatch scrimmage s1")
}
