package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aesthetica/internal/countdown"
	"aesthetica/internal/model"
	"aesthetica/internal/progression"
	"aesthetica/internal/scoring"
)

type activeTask struct {
	challenge model.Challenge
	draft     string
	result    *model.AssessmentResult
	// timeRemaining is frozen when the task is graded.
	timeRemaining int
	timer         *countdown.Timer
	evaluating    bool
	timedOut      bool
}

// ActiveTask is the client view of the task in progress. Grading data stays hidden
// until the task is graded.
type ActiveTask struct {
	Challenge     model.Challenge         `json:"challenge"`
	Draft         string                  `json:"draft"`
	TimeRemaining *int                    `json:"time_remaining,omitempty"`
	Paused        bool                    `json:"paused"`
	TimedOut      bool                    `json:"timed_out"`
	Result        *model.AssessmentResult `json:"result,omitempty"`
}

// StartChallenge generates a new challenge of taskType and makes it the active task,
// replacing any task in progress. pool restricts the categories; empty means all.
func (s *Service) StartChallenge(ctx context.Context, taskType model.TaskType, pool []model.Category) (_ ActiveTask, err error) {
	ctx, span := tracer.Start(ctx, "service.StartChallenge", trace.WithAttributes(
		attribute.String("task.type", string(taskType)),
	))
	defer func() { endSpan(span, err) }()

	if !taskType.Valid() {
		return ActiveTask{}, fmt.Errorf("%w: %q", ErrUnsupportedTaskType, taskType)
	}
	now := s.clock.Now()

	s.mu.Lock()
	s.refreshDayLocked(ctx, now)
	if !progression.Available(s.stats.DailyProgress, taskType, now) {
		s.mu.Unlock()
		return ActiveTask{}, fmt.Errorf("%w: %s", ErrQuotaReached, taskType)
	}
	apiKey := s.apiKeyLocked()
	if apiKey == "" {
		s.mu.Unlock()
		return ActiveTask{}, ErrSetupRequired
	}
	s.teardownActiveLocked()
	token := s.generation
	s.mu.Unlock()

	challenge, err := s.provider.GenerateChallenge(ctx, apiKey, taskType, pool)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != token {
		s.log.Info("discarding superseded challenge", "task_type", taskType)
		return ActiveTask{}, ErrStaleChallenge
	}
	if err != nil {
		s.log.Warn("challenge generation failed", "task_type", taskType, "error", err)
		return ActiveTask{}, fmt.Errorf("%w: %w", ErrGenerate, err)
	}

	a := &activeTask{challenge: challenge}
	if taskType == model.TaskMultipleChoice {
		id := challenge.ID
		a.timeRemaining = s.timerSeconds
		a.timer = countdown.Start(context.Background(), s.timerSeconds, s.tick, nil, func() {
			s.expire(id)
		})
	}
	s.generation++
	s.active = a
	span.SetAttributes(attribute.String("challenge.id", challenge.ID))
	s.log.Info("challenge started", "challenge_id", challenge.ID, "task_type", taskType, "category", challenge.Category)
	return s.viewLocked(a), nil
}

// Active returns the task in progress.
func (s *Service) Active() (ActiveTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ActiveTask{}, false
	}
	return s.viewLocked(s.active), true
}

// DraftAnswer keeps the answer typed so far; a forced submission on time-out grades it.
func (s *Service) DraftAnswer(id string, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookupLocked(id)
	if err != nil {
		return err
	}
	if a.result != nil {
		return ErrAlreadySubmitted
	}
	a.draft = answer
	return nil
}

// Submit grades answer (or the saved draft when answer is blank). Weighted multiple choice is
// scored locally; everything else goes to the evaluator. On evaluator failure the draft is kept
// and the countdown resumes so the user can retry.
func (s *Service) Submit(ctx context.Context, id string, answer string) (_ model.AssessmentResult, err error) {
	ctx, span := tracer.Start(ctx, "service.Submit", trace.WithAttributes(
		attribute.String("challenge.id", id),
	))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	a, err := s.lookupLocked(id)
	if err != nil {
		s.mu.Unlock()
		return model.AssessmentResult{}, err
	}
	switch {
	case a.result != nil:
		s.mu.Unlock()
		return model.AssessmentResult{}, ErrAlreadySubmitted
	case a.evaluating:
		s.mu.Unlock()
		return model.AssessmentResult{}, ErrSubmissionInFlight
	}
	if strings.TrimSpace(answer) == "" {
		answer = a.draft
	}
	if strings.TrimSpace(answer) == "" {
		s.mu.Unlock()
		return model.AssessmentResult{}, fmt.Errorf("%w: answer is empty", ErrInvalidInput)
	}
	a.draft = answer

	if result, ok := scoring.Grade(a.challenge, answer); ok {
		s.gradeLocked(a, result)
		s.mu.Unlock()
		span.SetAttributes(attribute.Bool("scored.locally", true), attribute.Int("score", result.Score))
		return result, nil
	}

	apiKey := s.apiKeyLocked()
	if apiKey == "" {
		s.mu.Unlock()
		return model.AssessmentResult{}, ErrSetupRequired
	}
	if a.timer != nil {
		a.timer.Pause()
	}
	a.evaluating = true
	challenge := a.challenge
	s.mu.Unlock()

	result, err := s.evaluator.EvaluateSubmission(ctx, apiKey, challenge, answer)

	s.mu.Lock()
	defer s.mu.Unlock()
	a.evaluating = false
	if s.active != a {
		return model.AssessmentResult{}, ErrStaleChallenge
	}
	if err != nil {
		if a.timer != nil {
			a.timer.Resume()
		}
		s.log.Warn("submission evaluation failed, draft kept", "challenge_id", id, "error", err)
		return model.AssessmentResult{}, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}
	if a.result != nil {
		return model.AssessmentResult{}, ErrAlreadySubmitted
	}
	s.gradeLocked(a, result)
	span.SetAttributes(attribute.Int("score", result.Score))
	return result, nil
}

// Cancel abandons the active task without crediting it.
func (s *Service) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookupLocked(id); err != nil {
		return err
	}
	s.teardownActiveLocked()
	s.log.Info("challenge cancelled", "challenge_id", id)
	return nil
}

// expire is the countdown's terminal action: it forces a submission for challenge id only.
func (s *Service) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.active
	if a == nil || a.challenge.ID != id || a.result != nil || a.evaluating {
		return
	}
	result := scoring.TimeUp(a.challenge)
	if strings.TrimSpace(a.draft) != "" {
		if graded, ok := scoring.Grade(a.challenge, a.draft); ok {
			result = graded
		}
	}
	a.timedOut = true
	a.timeRemaining = 0
	a.result = &result
	s.log.Info("countdown expired, submission forced", "challenge_id", id, "score", result.Score)
}

func (s *Service) gradeLocked(a *activeTask, result model.AssessmentResult) {
	if a.timer != nil {
		a.timeRemaining = a.timer.Remaining()
		a.timer.Stop()
	} else {
		a.timeRemaining = 0
	}
	a.result = &result
}

func (s *Service) lookupLocked(id string) (*activeTask, error) {
	if s.active == nil || s.active.challenge.ID != id {
		return nil, ErrChallengeNotFound
	}
	return s.active, nil
}

// teardownActiveLocked drops the active task, stops its countdown and invalidates
// collaborator calls still in flight.
func (s *Service) teardownActiveLocked() {
	if s.active != nil && s.active.timer != nil {
		s.active.timer.Stop()
	}
	s.active = nil
	s.generation++
}

func (s *Service) viewLocked(a *activeTask) ActiveTask {
	view := ActiveTask{
		Challenge: a.challenge,
		Draft:     a.draft,
		TimedOut:  a.timedOut,
	}
	if a.result == nil {
		view.Challenge.OptionScores = nil
		view.Challenge.CorrectOptionIndex = nil
		view.Challenge.ContextDescription = ""
	} else {
		result := *a.result
		view.Result = &result
	}
	if a.challenge.Type == model.TaskMultipleChoice {
		remaining := a.timeRemaining
		if a.result == nil && a.timer != nil {
			remaining = a.timer.Remaining()
			view.Paused = a.timer.Paused()
		}
		view.TimeRemaining = &remaining
	}
	return view
}
