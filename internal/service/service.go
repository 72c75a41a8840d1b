// Package service holds the single progression session: it loads the persisted records once,
// owns the active challenge and folds completed tasks into the stats.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aesthetica/internal/badge"
	"aesthetica/internal/calendar"
	"aesthetica/internal/event"
	"aesthetica/internal/history"
	"aesthetica/internal/logger"
	"aesthetica/internal/model"
	"aesthetica/internal/persist"
	"aesthetica/internal/progression"
)

var (
	ErrSetupRequired       = errors.New("api key is not configured")
	ErrGenerate            = errors.New("challenge generation failed")
	ErrEvaluate            = errors.New("submission evaluation failed")
	ErrStaleChallenge      = errors.New("challenge is no longer active")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrQuotaReached        = errors.New("no task of this type is available right now")
	ErrAlreadySubmitted    = errors.New("challenge was already graded")
	ErrNotSubmitted        = errors.New("challenge has not been graded yet")
	ErrSubmissionInFlight  = errors.New("a submission for this challenge is already being evaluated")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedTaskType = errors.New("unsupported task type")
)

const minAPIKeyLength = 10

var tracer = otel.Tracer("aesthetica/internal/service")

// ChallengeProvider produces a challenge of taskType drawn from pool.
type ChallengeProvider interface {
	GenerateChallenge(ctx context.Context, apiKey string, taskType model.TaskType, pool []model.Category) (model.Challenge, error)
}

// SubmissionEvaluator grades free-form answers.
type SubmissionEvaluator interface {
	EvaluateSubmission(ctx context.Context, apiKey string, challenge model.Challenge, answer string) (model.AssessmentResult, error)
}

type Deps struct {
	Repo      *persist.Repository
	Provider  ChallengeProvider
	Evaluator SubmissionEvaluator
	Publisher event.Publisher
	Badges    *badge.Evaluator
	Levels    *progression.LevelTable
	Clock     calendar.Clock
	Location  *time.Location
	Logger    *logger.Logger

	// APIKey is the configured credential; a key saved through SetAPIKey takes precedence.
	APIKey string

	// TimerSeconds and Tick drive the multiple-choice countdown.
	TimerSeconds int
	Tick         time.Duration
}

type Service struct {
	repo      *persist.Repository
	provider  ChallengeProvider
	evaluator SubmissionEvaluator
	publisher event.Publisher
	badges    *badge.Evaluator
	levels    progression.LevelTable
	clock     calendar.Clock
	loc       *time.Location
	log       *logger.Logger

	configKey    string
	timerSeconds int
	tick         time.Duration

	mu       sync.Mutex
	stats    model.UserStats
	history  []model.HistoryItem
	settings persist.Settings
	lastSeen string
	active   *activeTask

	// generation increments whenever the active task is replaced or torn down.
	generation uint64
}

func New(deps Deps) *Service {
	s := &Service{
		repo:         deps.Repo,
		provider:     deps.Provider,
		evaluator:    deps.Evaluator,
		publisher:    deps.Publisher,
		badges:       deps.Badges,
		levels:       progression.DefaultLevels,
		clock:        deps.Clock,
		loc:          deps.Location,
		log:          deps.Logger,
		configKey:    deps.APIKey,
		timerSeconds: deps.TimerSeconds,
		tick:         deps.Tick,
	}
	if deps.Levels != nil {
		s.levels = *deps.Levels
	}
	if s.publisher == nil {
		s.publisher = event.NewMemoryPublisher()
	}
	if s.badges == nil {
		s.badges = badge.Default()
	}
	if s.clock == nil {
		s.clock = calendar.RealClock{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.With("component", "service")
	if s.timerSeconds <= 0 {
		s.timerSeconds = progression.MCQTimerSeconds
	}
	if s.tick <= 0 {
		s.tick = time.Second
	}

	today := s.today(s.clock.Now())
	s.stats = persist.DefaultStats(today)
	s.history = []model.HistoryItem{}
	s.lastSeen = today
	return s
}

// Load reads the persisted records once at session start. It never fails:
// missing or corrupt records fall back to defaults.
func (s *Service) Load(ctx context.Context) {
	now := s.clock.Now()
	stats := s.repo.LoadStats(ctx, s.today(now))
	items := s.repo.LoadHistory(ctx)
	settings := s.repo.LoadSettings(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	s.history = items
	s.settings = settings
	s.lastSeen = stats.DailyProgress.LastDate
	s.refreshDayLocked(ctx, now)
	s.log.Info("session loaded",
		"level", stats.Level,
		"xp", stats.XP,
		"history_items", len(items),
		"api_key_configured", s.apiKeyLocked() != "",
	)
}

// Close stops the active countdown.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownActiveLocked()
}

func (s *Service) today(now time.Time) string {
	return calendar.DayKey(now, s.loc)
}

// refreshDayLocked applies the daily reset and persists it when the day rolled over.
func (s *Service) refreshDayLocked(ctx context.Context, now time.Time) {
	today := s.today(now)
	if s.stats.DailyProgress.LastDate == today {
		return
	}
	s.stats.DailyProgress = progression.ResetDaily(s.stats.DailyProgress, today)
	s.saveStatsLocked(ctx)
}

func (s *Service) saveStatsLocked(ctx context.Context) {
	if err := s.repo.SaveStats(ctx, s.stats); err != nil {
		s.log.Error("persist stats failed, keeping in-memory state", "error", err)
	}
}

func (s *Service) apiKeyLocked() string {
	if s.settings.APIKey != "" {
		return s.settings.APIKey
	}
	return s.configKey
}

type StatsView struct {
	Stats        model.UserStats           `json:"stats"`
	Level        progression.LevelProgress `json:"level"`
	Greeting     string                    `json:"greeting"`
	Availability progression.Availability  `json:"availability"`
	SetupNeeded  bool                      `json:"setup_needed"`
}

func (s *Service) Stats(ctx context.Context) StatsView {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDayLocked(ctx, now)
	return StatsView{
		Stats:        s.stats.Clone(),
		Level:        s.levels.Progress(s.stats.Level, s.stats.XP),
		Greeting:     Greeting(s.stats.Username, s.stats.Streak, s.lastSeen, now, s.loc),
		Availability: progression.Snapshot(s.stats.DailyProgress, now),
		SetupNeeded:  s.apiKeyLocked() == "",
	}
}

func (s *Service) Availability(ctx context.Context) progression.Availability {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDayLocked(ctx, now)
	return progression.Snapshot(s.stats.DailyProgress, now)
}

// History returns the ledger newest first, narrowed by filter ("" means all).
func (s *Service) History(filter string) ([]model.HistoryItem, error) {
	f, err := history.ParseFilter(filter)
	if err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return history.Apply(s.history, f), nil
}

func (s *Service) Badges() []badge.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badges.Catalog().View(s.stats.Badges)
}

func (s *Service) Levels() []progression.Level {
	return s.levels.Levels()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
