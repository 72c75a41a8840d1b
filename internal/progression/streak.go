package progression

import (
	"time"

	"aesthetica/internal/calendar"
)

// AdvanceStreak credits at most one streak day per calendar day.
// A gap of one or more missed days restarts the streak at 1.
func AdvanceStreak(prevStreak int, prevLastStreakDate string, today string, yesterday string) (int, string) {
	switch prevLastStreakDate {
	case today:
		return prevStreak, prevLastStreakDate
	case yesterday:
		return prevStreak + 1, today
	default:
		return 1, today
	}
}

// AdvanceStreakAt derives today and yesterday from now in loc.
func AdvanceStreakAt(prevStreak int, prevLastStreakDate string, now time.Time, loc *time.Location) (int, string) {
	return AdvanceStreak(
		prevStreak,
		prevLastStreakDate,
		calendar.DayKey(now, loc),
		calendar.PreviousDayKey(now, loc),
	)
}
