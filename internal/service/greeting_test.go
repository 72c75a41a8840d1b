package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGreeting(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 4, 10, hour, 30, 0, 0, time.UTC)
	}
	cases := []struct {
		name     string
		streak   int
		lastDate string
		now      time.Time
		contains string
	}{
		{"long absence", 20, "2026-03-30", at(10), "given up"},
		{"rusting", 0, "2026-04-05", at(10), "rusts"},
		{"two days is not rusting", 0, "2026-04-08", at(10), "Good morning"},
		{"streak praise", 7, "2026-04-09", at(10), "sharper"},
		{"late night", 0, "2026-04-10", at(3), "rest"},
		{"morning", 0, "2026-04-10", at(8), "Good morning, Mira"},
		{"lunch", 0, "2026-04-10", at(12), "Good afternoon"},
		{"afternoon", 0, "2026-04-10", at(16), "Afternoon light"},
		{"evening", 0, "2026-04-10", at(20), "Welcome back, Mira"},
		{"unparsable date", 0, "garbage", at(20), "Welcome back"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, Greeting("Mira", tc.streak, tc.lastDate, tc.now, time.UTC), tc.contains)
		})
	}
}
