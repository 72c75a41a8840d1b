package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aesthetica/internal/calendar"
	"aesthetica/internal/model"
)

func TestComputeXP(t *testing.T) {
	cases := []struct {
		name      string
		taskType  model.TaskType
		score     int
		remaining int
		want      int
	}{
		{"perfect mcq full time", model.TaskMultipleChoice, 100, 30, 110},
		{"partial mcq no time", model.TaskMultipleChoice, 50, 0, 25},
		{"observation", model.TaskObservation, 80, 0, 120},
		{"observation ignores time", model.TaskObservation, 80, 25, 120},
		{"analysis", model.TaskAnalysis, 100, 0, 500},
		{"rounding", model.TaskMultipleChoice, 33, 0, 17},
		{"zero score keeps time bonus", model.TaskMultipleChoice, 0, 10, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeXP(tc.taskType, tc.score, tc.remaining))
		})
	}
}

func TestComputeXPNeverNegative(t *testing.T) {
	for _, tt := range []model.TaskType{model.TaskMultipleChoice, model.TaskObservation, model.TaskAnalysis} {
		for score := -10; score <= 110; score += 5 {
			for remaining := -5; remaining <= 35; remaining += 5 {
				assert.GreaterOrEqual(t, ComputeXP(tt, score, remaining), 0)
			}
		}
	}
}

func TestResolveLevel(t *testing.T) {
	assert.Equal(t, 1, ResolveLevel(0))
	assert.Equal(t, 1, ResolveLevel(499))
	assert.Equal(t, 2, ResolveLevel(500))
	assert.Equal(t, 3, ResolveLevel(1500))
	assert.Equal(t, 5, ResolveLevel(9999))
	assert.Equal(t, 6, ResolveLevel(999999))
}

func TestResolveLevelMonotonic(t *testing.T) {
	prev := ResolveLevel(0)
	for xp := 0; xp <= 12000; xp += 37 {
		cur := ResolveLevel(xp)
		require.GreaterOrEqual(t, cur, prev, "xp=%d", xp)
		prev = cur
	}
}

func TestAdvanceReportsLevelUpOnlyWhenIncreasing(t *testing.T) {
	level, up := DefaultLevels.Advance(1, 520)
	assert.Equal(t, 2, level)
	require.NotNil(t, up)
	assert.Equal(t, LevelUp{Old: 1, New: 2}, *up)

	level, up = DefaultLevels.Advance(2, 600)
	assert.Equal(t, 2, level)
	assert.Nil(t, up)
}

func TestNewLevelTableRejectsNonIncreasingLevels(t *testing.T) {
	_, err := NewLevelTable([]Level{{Level: 2, XP: 0}, {Level: 1, XP: 100}})
	assert.Error(t, err)

	_, err = NewLevelTable(nil)
	assert.Error(t, err)
}

func TestLevelProgress(t *testing.T) {
	p := DefaultLevels.Progress(2, 1000)
	assert.Equal(t, 1500, p.NextXP)
	assert.Equal(t, 50, p.Percent)
	assert.False(t, p.Max)

	top := DefaultLevels.Progress(6, 20000)
	assert.True(t, top.Max)
	assert.Equal(t, "Visual Philosopher", top.Title)
}

func TestAdvanceStreak(t *testing.T) {
	const today, yesterday = "2026-04-10", "2026-04-09"

	streak, date := AdvanceStreak(4, yesterday, today, yesterday)
	assert.Equal(t, 5, streak)
	assert.Equal(t, today, date)

	streak, date = AdvanceStreak(4, today, today, yesterday)
	assert.Equal(t, 4, streak)
	assert.Equal(t, today, date)

	streak, date = AdvanceStreak(9, "2026-04-08", today, yesterday)
	assert.Equal(t, 1, streak)
	assert.Equal(t, today, date)

	streak, date = AdvanceStreak(0, "", today, yesterday)
	assert.Equal(t, 1, streak)
	assert.Equal(t, today, date)
}

func TestAdvanceStreakTwiceSameDay(t *testing.T) {
	now := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)
	streak, date := AdvanceStreakAt(2, "2026-04-09", now, time.UTC)
	streak, date = AdvanceStreakAt(streak, date, now.Add(time.Hour), time.UTC)
	assert.Equal(t, 3, streak)
	assert.Equal(t, "2026-04-10", date)
}

func TestDailyQuotaMCQLimitAndRollover(t *testing.T) {
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	today := calendar.DayKey(now, time.UTC)
	p := ResetDaily(model.DailyProgress{LastDate: "2026-04-09", MCQCount: 7}, today)
	assert.Equal(t, 0, p.MCQCount)

	var cont bool
	for i := 0; i < MaxDailyMCQ; i++ {
		require.True(t, MCQAvailable(p))
		p, cont = RecordCompletion(p, model.TaskMultipleChoice, now)
		if i < MaxDailyMCQ-1 {
			assert.True(t, cont, "completion %d", i+1)
		}
	}
	assert.False(t, cont, "the 10th completion ends the session")
	assert.False(t, MCQAvailable(p))
	assert.Equal(t, 0, MCQRemaining(p))

	p = ResetDaily(p, today)
	assert.False(t, MCQAvailable(p))

	p = ResetDaily(p, "2026-04-11")
	assert.True(t, MCQAvailable(p))
	assert.Equal(t, 0, p.MCQCount)
}

func TestResetDailyKeepsWeeklyTimestamp(t *testing.T) {
	p := model.DailyProgress{
		LastDate:               "2026-04-09",
		MCQCount:               3,
		ObservationDone:        true,
		LastWeeklyAnalysisDate: "2026-04-08T10:00:00.000Z",
	}
	got := ResetDaily(p, "2026-04-10")
	assert.Equal(t, model.DailyProgress{
		LastDate:               "2026-04-10",
		LastWeeklyAnalysisDate: "2026-04-08T10:00:00.000Z",
	}, got)
}

func TestObservationOncePerDay(t *testing.T) {
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	p := model.DailyProgress{LastDate: "2026-04-10"}
	require.True(t, ObservationAvailable(p))

	p, cont := RecordCompletion(p, model.TaskObservation, now)
	assert.False(t, cont)
	assert.False(t, ObservationAvailable(p))
	assert.False(t, Available(p, model.TaskObservation, now))
}

func TestWeeklyCooldown(t *testing.T) {
	done := time.Date(2026, 4, 10, 18, 30, 0, 0, time.UTC)
	p := model.DailyProgress{LastDate: "2026-04-10"}
	assert.True(t, WeeklyAvailable(p, done))

	p, _ = RecordCompletion(p, model.TaskAnalysis, done)
	assert.False(t, WeeklyAvailable(p, done))
	assert.False(t, WeeklyAvailable(p, done.Add(time.Hour)))
	assert.False(t, WeeklyAvailable(p, done.Add(5*calendar.Day)))
	assert.True(t, WeeklyAvailable(p, done.Add(7*calendar.Day)))
	assert.True(t, WeeklyAvailable(p, done.Add(30*calendar.Day)))

	next := NextWeeklyAt(p, done)
	require.False(t, next.IsZero())
	assert.True(t, WeeklyAvailable(p, next))
	assert.False(t, WeeklyAvailable(p, next.Add(-time.Nanosecond)))
}

func TestWeeklyAvailableWithCorruptTimestamp(t *testing.T) {
	p := model.DailyProgress{LastWeeklyAnalysisDate: "garbage"}
	assert.True(t, WeeklyAvailable(p, time.Now()))
}

func TestSnapshot(t *testing.T) {
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	p := model.DailyProgress{LastDate: "2026-04-10", MCQCount: 4, LastWeeklyAnalysisDate: calendar.FormatTimestamp(now)}
	snap := Snapshot(p, now)
	assert.True(t, snap.MCQAvailable)
	assert.Equal(t, 6, snap.MCQRemaining)
	assert.True(t, snap.ObservationAvailable)
	assert.False(t, snap.WeeklyAvailable)
	require.NotNil(t, snap.NextWeeklyAt)
}

func TestAverageScoreAndElapsed(t *testing.T) {
	assert.Equal(t, 0, AverageScore(nil))
	assert.Equal(t, 67, AverageScore([]model.ScorePoint{{Score: 100}, {Score: 100}, {Score: 0}}))
	assert.Equal(t, 26, ElapsedAnswerSeconds(model.TaskMultipleChoice, 4))
	assert.Equal(t, 0, ElapsedAnswerSeconds(model.TaskAnalysis, 4))
}
