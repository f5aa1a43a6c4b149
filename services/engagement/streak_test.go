package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceStreak_FirstSubmission(t *testing.T) {
	res := AdvanceStreak(0, nil, date(2024, time.January, 2))

	require.Equal(t, 1, res.Streak)
	require.Equal(t, date(2024, time.January, 2), res.LastSubmission)
	require.True(t, res.Changed)
}

func TestAdvanceStreak_NextDayExtends(t *testing.T) {
	last := date(2024, time.January, 1)

	res := AdvanceStreak(4, &last, date(2024, time.January, 2))

	require.Equal(t, 5, res.Streak)
	require.Equal(t, date(2024, time.January, 2), res.LastSubmission)
	require.True(t, res.Changed)
}

func TestAdvanceStreak_SameDayUnchanged(t *testing.T) {
	last := date(2024, time.January, 2)

	res := AdvanceStreak(5, &last, date(2024, time.January, 2))

	require.Equal(t, 5, res.Streak)
	require.Equal(t, date(2024, time.January, 2), res.LastSubmission)
	require.False(t, res.Changed)
}

func TestAdvanceStreak_GapResets(t *testing.T) {
	last := date(2024, time.January, 2)

	res := AdvanceStreak(5, &last, date(2024, time.January, 5))

	require.Equal(t, 1, res.Streak)
	require.Equal(t, date(2024, time.January, 5), res.LastSubmission)
	require.True(t, res.Changed)
}

func TestAdvanceStreak_NegativeGapResets(t *testing.T) {
	last := date(2024, time.January, 10)

	res := AdvanceStreak(7, &last, date(2024, time.January, 8))

	require.Equal(t, 1, res.Streak)
	require.Equal(t, date(2024, time.January, 8), res.LastSubmission)
	require.True(t, res.Changed)
}

func TestAdvanceStreak_IgnoresTimeOfDay(t *testing.T) {
	last := time.Date(2024, time.March, 1, 23, 50, 0, 0, time.UTC)

	res := AdvanceStreak(2, &last, time.Date(2024, time.March, 2, 0, 10, 0, 0, time.UTC))

	require.Equal(t, 3, res.Streak)
	require.Equal(t, date(2024, time.March, 2), res.LastSubmission)
	require.True(t, res.Changed)
}
