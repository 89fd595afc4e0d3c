package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_Position(t *testing.T) {
	l := Standard()
	cases := []struct {
		perf, pot Rating
		want      Position
	}{
		{Low, Low, 1},
		{Low, Medium, 2},
		{Low, High, 3},
		{Medium, Low, 4},
		{Medium, Medium, 5},
		{Medium, High, 6},
		{High, Low, 7},
		{High, Medium, 8},
		{High, High, 9},
		{"Great", High, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, l.Position(c.perf, c.pot), "%s/%s", c.perf, c.pot)
	}
}

func TestLayout_RatingsRoundTrip(t *testing.T) {
	l := Standard()
	for p := Position(1); p <= 9; p++ {
		perf, pot, err := l.Ratings(p)
		require.NoError(t, err)
		assert.Equal(t, p, l.Position(perf, pot))
	}

	_, _, err := l.Ratings(0)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, _, err = l.Ratings(10)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestParseRating(t *testing.T) {
	for in, want := range map[string]Rating{"low": Low, " MEDIUM ": Medium, "High": High} {
		got, err := ParseRating(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRating("excellent")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = ParseRating("")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestLayout_Labels(t *testing.T) {
	l := Standard()
	assert.Equal(t, "Underperformer [L,L]", l.Label(1))
	assert.Equal(t, "Core Talent [M,M]", l.Label(5))
	assert.Equal(t, "Star [H,H]", l.Label(9))
	assert.Equal(t, "Unknown [0]", l.Label(0))
	assert.Equal(t, "Moved from Inconsistent [L,M] to Star [H,H]", l.Describe(2, 9))
}

func TestLayout_Tiers(t *testing.T) {
	l := Standard()
	want := map[Position]Tier{
		1: TierLow, 2: TierLow, 3: TierLow, 4: TierLow,
		5: TierMiddle, 7: TierMiddle,
		6: TierHigh, 8: TierHigh, 9: TierHigh,
	}
	for p, tier := range want {
		assert.Equal(t, tier, l.Tier(p), "position %d", p)
	}
}

func TestLayout_IsBigMove(t *testing.T) {
	l := Standard()
	assert.True(t, l.IsBigMove(2, 9))
	assert.True(t, l.IsBigMove(8, 4))
	assert.False(t, l.IsBigMove(5, 9), "middle to high is not a big move")
	assert.False(t, l.IsBigMove(1, 7))
	assert.False(t, l.IsBigMove(3, 3))
}
