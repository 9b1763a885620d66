package series

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesDecide(t *testing.T) {
	t.Parallel()

	rules := BestOfThree()
	tests := []struct {
		name        string
		winners     []string
		wantWinner  string
		wantDecided bool
		wantLength  int
		wantAnomaly bool
	}{
		{name: "two nil sweep", winners: []string{"A", "A"}, wantWinner: "A", wantDecided: true, wantLength: 2},
		{name: "comeback", winners: []string{"A", "B", "B"}, wantWinner: "B", wantDecided: true, wantLength: 3},
		{name: "one match played", winners: []string{"A"}, wantLength: 1},
		{name: "split", winners: []string{"A", "B"}, wantLength: 2},
		{name: "nothing played", winners: nil, wantLength: 0},
		{name: "extra match after decision", winners: []string{"A", "A", "B"}, wantWinner: "A", wantDecided: true, wantLength: 2, wantAnomaly: true},
		{name: "too many matches", winners: []string{"A", "B", "", "B"}, wantWinner: "B", wantDecided: true, wantLength: 4, wantAnomaly: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := rules.Decide(tc.winners)
			assert.Equal(t, tc.wantWinner, got.WinnerID)
			assert.Equal(t, tc.wantDecided, got.Decided)
			assert.Equal(t, tc.wantLength, got.DecidingLength)
			assert.Equal(t, tc.wantAnomaly, got.Anomalous(), "anomaly=%q", got.Anomaly)
		})
	}
}

func TestRulesDecide_WinnerOnlyFromThreshold(t *testing.T) {
	t.Parallel()

	got := Rules{BestOf: 5}.Decide([]string{"A", "B", "A", "B"})
	if got.Decided {
		t.Fatalf("expected undecided best-of-5 at 2-2, got winner %s", got.WinnerID)
	}
	if got.Wins["A"] != 2 || got.Wins["B"] != 2 {
		t.Fatalf("unexpected wins: %+v", got.Wins)
	}
}

func TestRulesCheckAppend(t *testing.T) {
	t.Parallel()

	rules := BestOfThree()
	require.NoError(t, rules.CheckAppend(nil))
	require.NoError(t, rules.CheckAppend([]string{"A", "B"}))

	if err := rules.CheckAppend([]string{"A", "A"}); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if err := rules.CheckAppend([]string{"A", "", "B"}); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestRulesValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, BestOfThree().Validate())
	assert.Error(t, Rules{BestOf: 2}.Validate())
	assert.Error(t, Rules{}.Validate())
	assert.Equal(t, 2, BestOfThree().WinsNeeded())
}

func TestRulesNeedsMore(t *testing.T) {
	t.Parallel()

	rules := BestOfThree()
	assert.True(t, rules.NeedsMore([]string{"A"}))
	assert.True(t, rules.NeedsMore([]string{"A", "B"}))
	assert.False(t, rules.NeedsMore([]string{"A", "A"}))
	assert.False(t, rules.NeedsMore([]string{"A", "", ""}))
}
