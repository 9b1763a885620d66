package jobqueue

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
)

const defaultMatchRunnerPath = "/v1/matches/run"

// Enqueuer is the publish side of a delayed HTTP job queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

// MatchJob is the body the match runner receives for one queued scrimmage.
// The runner reports back on CallbackPath + "/running|result|failure".
type MatchJob struct {
	ScrimmageID      string `json:"scrimmage_id"`
	LeagueID         string `json:"league_id"`
	RedTeamID        string `json:"red_team_id"`
	BlueTeamID       string `json:"blue_team_id"`
	RedSubmissionID  string `json:"red_submission_id"`
	BlueSubmissionID string `json:"blue_submission_id"`
	MapID            string `json:"map_id"`
	Ranked           bool   `json:"ranked"`
	CallbackPath     string `json:"callback_path"`
}

// ScrimmageDispatcher hands queued scrimmages to the match runner through
// the job queue. The scrimmage id doubles as the deduplication id so the
// dispatch sweeper can retry without double-running a match.
type ScrimmageDispatcher struct {
	queue Enqueuer
	path  string
}

func NewScrimmageDispatcher(queue Enqueuer, runnerPath string) *ScrimmageDispatcher {
	runnerPath = strings.TrimSpace(runnerPath)
	if runnerPath == "" {
		runnerPath = defaultMatchRunnerPath
	}
	return &ScrimmageDispatcher{queue: queue, path: runnerPath}
}

func (d *ScrimmageDispatcher) DispatchScrimmage(ctx context.Context, item scrimmage.Scrimmage) error {
	if item.Status != scrimmage.StatusQueued {
		return crerr.Newf("scrimmage %s is %s, only queued scrimmages are dispatched", item.ID, item.Status)
	}
	if item.RedSubmissionID == "" || item.BlueSubmissionID == "" {
		return crerr.AssertionFailedf("queued scrimmage %s has no bound submissions", item.ID)
	}

	job := MatchJob{
		ScrimmageID:      item.ID,
		LeagueID:         item.LeagueID,
		RedTeamID:        item.RedTeamID,
		BlueTeamID:       item.BlueTeamID,
		RedSubmissionID:  item.RedSubmissionID,
		BlueSubmissionID: item.BlueSubmissionID,
		MapID:            item.MapID,
		Ranked:           item.Ranked,
		CallbackPath:     "/v1/internal/leagues/" + item.LeagueID + "/scrimmages/" + item.ID,
	}
	if err := d.queue.Enqueue(ctx, d.path, job, 0, "scrimmage-"+item.ID); err != nil {
		return crerr.Wrapf(err, "dispatch scrimmage %s", item.ID)
	}
	return nil
}
