// Package series decides best-of-N games from the ordered winners of their matches.
package series

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyDecided = errors.New("series already decided")
	ErrFull           = errors.New("series has no remaining matches")
)

type Rules struct {
	BestOf int
}

func BestOfThree() Rules {
	return Rules{BestOf: 3}
}

func (r Rules) Validate() error {
	if r.BestOf < 1 || r.BestOf%2 == 0 {
		return fmt.Errorf("best-of must be a positive odd number, got %d", r.BestOf)
	}
	return nil
}

// WinsNeeded is the number of match wins that decides the series.
func (r Rules) WinsNeeded() int {
	return r.BestOf/2 + 1
}

// Outcome is the result of walking a series' matches in order.
type Outcome struct {
	WinnerID string
	Decided  bool
	// DecidingLength is the number of leading matches that decided the
	// series, or every recorded match while undecided.
	DecidingLength int
	Wins           map[string]int
	// Anomaly describes recorded matches that disagree with the rules,
	// such as games played after the series was already won.
	Anomaly string
}

func (o Outcome) Anomalous() bool {
	return o.Anomaly != ""
}

// Decide returns the first side to reach WinsNeeded. Empty entries are
// matches without a recorded winner and count toward nobody.
func (r Rules) Decide(winners []string) Outcome {
	out := Outcome{
		DecidingLength: len(winners),
		Wins:           make(map[string]int, 2),
	}
	need := r.WinsNeeded()
	for i, winner := range winners {
		if winner == "" {
			continue
		}
		out.Wins[winner]++
		if out.Wins[winner] == need {
			out.WinnerID = winner
			out.Decided = true
			out.DecidingLength = i + 1
			break
		}
	}

	switch {
	case len(winners) > r.BestOf:
		out.Anomaly = fmt.Sprintf("%d matches recorded for best-of-%d", len(winners), r.BestOf)
	case out.Decided && len(winners) > out.DecidingLength:
		out.Anomaly = fmt.Sprintf("%d matches recorded after the series was decided", len(winners)-out.DecidingLength)
	}
	if out.Decided && len(winners) > out.DecidingLength {
		// Wins reflect every recorded match so anomalies stay visible.
		for _, winner := range winners[out.DecidingLength:] {
			if winner != "" {
				out.Wins[winner]++
			}
		}
	}

	return out
}

// NeedsMore reports whether another match is required to decide the series.
func (r Rules) NeedsMore(winners []string) bool {
	o := r.Decide(winners)
	return !o.Decided && len(winners) < r.BestOf
}

// CheckAppend returns an error when no further match may be recorded.
func (r Rules) CheckAppend(winners []string) error {
	o := r.Decide(winners)
	if o.Decided {
		return fmt.Errorf("%w: winner=%s", ErrAlreadyDecided, o.WinnerID)
	}
	if len(winners) >= r.BestOf {
		return fmt.Errorf("%w: %d of %d matches recorded", ErrFull, len(winners), r.BestOf)
	}
	return nil
}
