package progression

import (
	"time"

	"aesthetica/internal/calendar"
	"aesthetica/internal/model"
)

const (
	MaxDailyMCQ        = 10
	WeeklyCooldownDays = 7
)

// ResetDaily clears the per-day counters when today differs from the stored day.
// The weekly analysis timestamp keeps its own cooldown and is never reset here.
func ResetDaily(p model.DailyProgress, today string) model.DailyProgress {
	if p.LastDate == today {
		return p
	}
	return model.DailyProgress{
		LastDate:               today,
		MCQCount:               0,
		ObservationDone:        false,
		LastWeeklyAnalysisDate: p.LastWeeklyAnalysisDate,
	}
}

func MCQAvailable(p model.DailyProgress) bool {
	return p.MCQCount < MaxDailyMCQ
}

func MCQRemaining(p model.DailyProgress) int {
	return clamp(MaxDailyMCQ-p.MCQCount, 0, MaxDailyMCQ)
}

func ObservationAvailable(p model.DailyProgress) bool {
	return !p.ObservationDone
}

// WeeklyAvailable is true when no analysis was ever completed or
// ceil(elapsed / 24h) >= 7. Unparsable timestamps count as never completed.
func WeeklyAvailable(p model.DailyProgress, now time.Time) bool {
	last, ok := calendar.ParseTimestamp(p.LastWeeklyAnalysisDate)
	if !ok {
		return true
	}
	return calendar.ElapsedDaysCeil(last, now) >= WeeklyCooldownDays
}

// NextWeeklyAt is the earliest instant WeeklyAvailable turns true, zero when already available.
func NextWeeklyAt(p model.DailyProgress, now time.Time) time.Time {
	if WeeklyAvailable(p, now) {
		return time.Time{}
	}
	last, _ := calendar.ParseTimestamp(p.LastWeeklyAnalysisDate)
	return last.Add((WeeklyCooldownDays - 1) * calendar.Day).Add(time.Nanosecond)
}

// Available reports whether a new task of taskType may start.
func Available(p model.DailyProgress, taskType model.TaskType, now time.Time) bool {
	switch taskType {
	case model.TaskMultipleChoice:
		return MCQAvailable(p)
	case model.TaskObservation:
		return ObservationAvailable(p)
	case model.TaskAnalysis:
		return WeeklyAvailable(p, now)
	default:
		return false
	}
}

// RecordCompletion folds one completed task into the daily progress.
// For multiple choice it also reports whether another challenge may follow in the same session:
// the completion that brings the pre-increment count to the limit ends the session.
func RecordCompletion(p model.DailyProgress, taskType model.TaskType, now time.Time) (model.DailyProgress, bool) {
	switch taskType {
	case model.TaskMultipleChoice:
		cont := p.MCQCount+1 < MaxDailyMCQ
		p.MCQCount++
		return p, cont
	case model.TaskObservation:
		p.ObservationDone = true
	case model.TaskAnalysis:
		p.LastWeeklyAnalysisDate = calendar.FormatTimestamp(now)
	}
	return p, false
}

type Availability struct {
	MCQAvailable         bool       `json:"mcq_available"`
	MCQRemaining         int        `json:"mcq_remaining"`
	ObservationAvailable bool       `json:"observation_available"`
	WeeklyAvailable      bool       `json:"weekly_available"`
	NextWeeklyAt         *time.Time `json:"next_weekly_at,omitempty"`
}

func Snapshot(p model.DailyProgress, now time.Time) Availability {
	a := Availability{
		MCQAvailable:         MCQAvailable(p),
		MCQRemaining:         MCQRemaining(p),
		ObservationAvailable: ObservationAvailable(p),
		WeeklyAvailable:      WeeklyAvailable(p, now),
	}
	if next := NextWeeklyAt(p, now); !next.IsZero() {
		a.NextWeeklyAt = &next
	}
	return a
}
