package service

import (
	"fmt"
	"time"

	"aesthetica/internal/calendar"
)

// Greeting picks the dashboard line from how long the user has been away, their streak
// and the local time of day. lastDate is the last day the user was active.
func Greeting(name string, streak int, lastDate string, now time.Time, loc *time.Location) string {
	if name == "" {
		name = "friend"
	}
	if loc != nil {
		now = now.In(loc)
	}

	away, _ := calendar.DaysBetweenKeys(lastDate, calendar.DayKey(now, loc))
	switch {
	case away > 7:
		return fmt.Sprintf("%s, I was beginning to think you had given up on beauty.", name)
	case away > 2:
		return fmt.Sprintf("Taste rusts, %s. You have been away too long.", name)
	case streak >= 7:
		return fmt.Sprintf("Your eye keeps getting sharper, %s. Keep it up.", name)
	}

	switch hour := now.Hour(); {
	case hour < 5:
		return "Late-night inspiration is the most seductive, but remember to rest."
	case hour < 11:
		return fmt.Sprintf("Good morning, %s. Ready to start the day with a trained eye?", name)
	case hour < 14:
		return fmt.Sprintf("Good afternoon, %s. Even on busy days, keep noticing what surrounds you.", name)
	case hour < 18:
		return "Afternoon light is perfect for practising observation."
	default:
		return fmt.Sprintf("Welcome back, %s. What would you like to train today?", name)
	}
}
