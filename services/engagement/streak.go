package engagement

import "time"

// StreakResult is the outcome of advancing a user's streak for one
// submission event. Changed reports whether the caller must persist
// the new streak and last submission date.
type StreakResult struct {
	Streak         int
	LastSubmission time.Time
	Changed        bool
}

// AdvanceStreak computes the streak after a submission on event day.
// Comparisons are at calendar-day granularity. A first-ever submission
// starts the streak at 1, a same-day submission leaves it untouched,
// a next-day submission extends it, and any larger or negative gap
// resets it to 1.
func AdvanceStreak(prior int, last *time.Time, event time.Time) StreakResult {
	eventDay := truncateDay(event)

	if last == nil {
		return StreakResult{Streak: 1, LastSubmission: eventDay, Changed: true}
	}

	lastDay := truncateDay(*last)
	diff := int(eventDay.Sub(lastDay).Hours() / 24)

	switch {
	case diff == 0:
		return StreakResult{Streak: prior, LastSubmission: lastDay, Changed: false}
	case diff == 1:
		return StreakResult{Streak: prior + 1, LastSubmission: eventDay, Changed: true}
	default:
		return StreakResult{Streak: 1, LastSubmission: eventDay, Changed: true}
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
