package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aesthetica/internal/badge"
	"aesthetica/internal/calendar"
	"aesthetica/internal/event"
	"aesthetica/internal/history"
	"aesthetica/internal/model"
	"aesthetica/internal/progression"
)

type LevelUpView struct {
	Old   int    `json:"old"`
	New   int    `json:"new"`
	Title string `json:"title"`
}

type Completion struct {
	Item           model.HistoryItem `json:"item"`
	XPGained       int               `json:"xp_gained"`
	LevelUp        *LevelUpView      `json:"level_up,omitempty"`
	UnlockedBadges []model.Badge     `json:"unlocked_badges"`
	// Continue tells a multiple-choice session whether another challenge may follow.
	Continue bool            `json:"continue"`
	Stats    model.UserStats `json:"stats"`
	// Degraded is set when the progression pass failed and the task was not credited.
	Degraded bool `json:"degraded,omitempty"`
}

// Complete commits the graded active task: XP, history, quota, streak, level and badges,
// in that order, then persists and announces the result.
func (s *Service) Complete(ctx context.Context, id string) (_ Completion, err error) {
	ctx, span := tracer.Start(ctx, "service.Complete", trace.WithAttributes(
		attribute.String("challenge.id", id),
	))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	a, err := s.lookupLocked(id)
	if err != nil {
		s.mu.Unlock()
		return Completion{}, err
	}
	if a.result == nil {
		s.mu.Unlock()
		return Completion{}, ErrNotSubmitted
	}
	now := s.clock.Now()
	s.teardownActiveLocked()

	out, events := s.commitLocked(ctx, a, now)
	if !out.Degraded {
		s.lastSeen = s.today(now)
		s.saveStatsLocked(ctx)
		if fidelity, err := s.repo.SaveHistory(ctx, s.history); err != nil {
			s.log.Error("persist history failed, keeping in-memory ledger", "error", err)
		} else {
			span.SetAttributes(attribute.String("history.fidelity", fidelity.String()))
		}
	}
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("xp.gained", out.XPGained),
		attribute.Int("badges.unlocked", len(out.UnlockedBadges)),
		attribute.Bool("degraded", out.Degraded),
	)
	s.publish(ctx, events)
	return out, nil
}

// commitLocked folds the task into copies of the records and swaps them in only when every
// stage succeeded. A panic in the pass leaves stats and history untouched; the assessment
// still reaches the caller.
func (s *Service) commitLocked(ctx context.Context, a *activeTask, now time.Time) (out Completion, events []event.Event) {
	result := *a.result
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("progression update failed, task not credited",
				"challenge_id", a.challenge.ID,
				"panic", fmt.Sprint(r),
			)
			out = Completion{
				Item: model.HistoryItem{
					Challenge:  a.challenge,
					UserAnswer: a.draft,
					Assessment: result,
				},
				UnlockedBadges: []model.Badge{},
				Stats:          s.stats.Clone(),
				Degraded:       true,
			}
			events = nil
		}
	}()

	taskType := a.challenge.Type
	today := s.today(now)
	stamp := calendar.FormatTimestamp(now)

	stats := s.stats.Clone()
	stats.DailyProgress = progression.ResetDaily(stats.DailyProgress, today)

	xp := progression.ComputeXP(taskType, result.Score, a.timeRemaining)
	item := model.HistoryItem{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Date:       stamp,
		Challenge:  a.challenge,
		UserAnswer: a.draft,
		Assessment: result,
		XPGained:   xp,
	}
	items := history.Prepend(s.history, item)

	stats.ScoresHistory = append(stats.ScoresHistory, model.ScorePoint{Date: stamp, Score: result.Score})
	stats.AverageScore = progression.AverageScore(stats.ScoresHistory)

	var cont bool
	stats.DailyProgress, cont = progression.RecordCompletion(stats.DailyProgress, taskType, now)
	stats.Streak, stats.LastStreakDate = progression.AdvanceStreakAt(stats.Streak, stats.LastStreakDate, now, s.loc)
	stats.TotalTasks++

	stats.XP += xp
	level, up := s.levels.Advance(stats.Level, stats.XP)
	stats.Level = level

	var unlocked []model.Badge
	stats.Badges, unlocked = s.badges.Evaluate(badge.Input{
		Stats:   stats,
		History: items,
		Last: &badge.Outcome{
			Type:           taskType,
			Score:          result.Score,
			ElapsedSeconds: progression.ElapsedAnswerSeconds(taskType, a.timeRemaining),
		},
		Now:      now,
		Location: s.loc,
	})

	if unlocked == nil {
		unlocked = []model.Badge{}
	}
	s.stats = stats
	s.history = items

	out = Completion{
		Item:           item,
		XPGained:       xp,
		UnlockedBadges: unlocked,
		Continue:       cont,
		Stats:          stats.Clone(),
	}
	events = append(events, event.New(event.TypeTaskCompleted, now, event.TaskCompleted{
		ChallengeID: a.challenge.ID,
		TaskType:    taskType,
		Category:    a.challenge.Category,
		Score:       result.Score,
		XPGained:    xp,
		TotalXP:     stats.XP,
		Streak:      stats.Streak,
	}))
	if up != nil {
		title := s.levels.Info(up.New).Title
		out.LevelUp = &LevelUpView{Old: up.Old, New: up.New, Title: title}
		events = append(events, event.New(event.TypeLevelUp, now, event.LevelUp{Old: up.Old, New: up.New, Title: title}))
	}
	for _, b := range unlocked {
		events = append(events, event.New(event.TypeBadgeUnlocked, now, event.BadgeUnlocked{
			BadgeID:    b.ID,
			Name:       b.Name,
			UnlockedAt: b.UnlockedAt,
		}))
	}
	s.log.Info("task completed",
		"challenge_id", a.challenge.ID,
		"task_type", taskType,
		"score", result.Score,
		"xp_gained", xp,
		"level", stats.Level,
		"streak", stats.Streak,
		"badges_unlocked", len(unlocked),
	)
	return out, events
}

func (s *Service) publish(ctx context.Context, events []event.Event) {
	for _, e := range events {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.log.Warn("publish event failed", "event_type", e.Type, "event_id", e.ID, "error", err)
		}
	}
}
