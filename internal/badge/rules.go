package badge

import (
	"time"

	"aesthetica/internal/history"
	"aesthetica/internal/model"
	"aesthetica/internal/progression"
)

// Outcome describes the task that was just folded into the stats.
type Outcome struct {
	Type           model.TaskType
	Score          int
	ElapsedSeconds int
}

// Input is evaluated after the completed task is already reflected in Stats,
// with History newest first so History[0] is that task.
type Input struct {
	Stats    model.UserStats
	History  []model.HistoryItem
	Last     *Outcome
	Now      time.Time
	Location *time.Location
}

func (in Input) localHour() int {
	t := in.Now
	if in.Location != nil {
		t = t.In(in.Location)
	}
	return t.Hour()
}

// Predicate must only read its input.
type Predicate func(Input) bool

// DefaultRules maps every catalog id to its unlock condition.
var DefaultRules = map[model.BadgeID]Predicate{
	"first_step":   func(in Input) bool { return len(in.History) >= 1 },
	"streak_3":     streakAtLeast(3),
	"streak_7":     streakAtLeast(7),
	"streak_30":    streakAtLeast(30),
	"perfect_10":   perfectTen,
	"analyst":      func(in Input) bool { return in.Stats.DailyProgress.LastWeeklyAnalysisDate != "" },
	"early_bird":   func(in Input) bool { h := in.localHour(); return h >= 6 && h < 9 },
	"night_owl":    func(in Input) bool { h := in.localHour(); return h >= 22 || h < 2 },
	"veteran":      func(in Input) bool { return in.Stats.TotalTasks >= 100 },
	"sharpshooter": sharpshooter,
	"resilient":    resilient,
	"explorer":     func(in Input) bool { return len(history.Categories(in.History)) >= 3 },
	"polymath":     polymath,
	"speed_demon":  speedDemon,
}

func streakAtLeast(n int) Predicate {
	return func(in Input) bool { return in.Stats.Streak >= n }
}

// perfectTen checks the ten newest entries regardless of which day they were played on.
func perfectTen(in Input) bool {
	if in.Stats.DailyProgress.MCQCount < progression.MaxDailyMCQ {
		return false
	}
	for _, item := range history.Recent(in.History, progression.MaxDailyMCQ) {
		if item.Challenge.Type != model.TaskMultipleChoice || item.Assessment.Score != 100 {
			return false
		}
	}
	return true
}

func sharpshooter(in Input) bool {
	const run = 5
	if len(in.History) < run {
		return false
	}
	for _, item := range history.Recent(in.History, run) {
		if item.Assessment.Score != 100 {
			return false
		}
	}
	return true
}

func resilient(in Input) bool {
	if len(in.History) < 2 {
		return false
	}
	return in.History[1].Assessment.Score < 40 && in.History[0].Assessment.Score > 90
}

func polymath(in Input) bool {
	seen := history.Categories(in.History)
	for _, c := range model.AllCategories {
		if _, ok := seen[c]; !ok {
			return false
		}
	}
	return true
}

func speedDemon(in Input) bool {
	last := in.Last
	return last != nil &&
		last.Type == model.TaskMultipleChoice &&
		last.Score >= 90 &&
		last.ElapsedSeconds < 5
}
