// Package event publishes progression milestones to interested consumers.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"aesthetica/internal/model"
)

type Type string

const (
	TypeTaskCompleted Type = "task.completed"
	TypeLevelUp       Type = "level.up"
	TypeBadgeUnlocked Type = "badge.unlocked"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type TaskCompleted struct {
	ChallengeID string         `json:"challengeId"`
	TaskType    model.TaskType `json:"taskType"`
	Category    model.Category `json:"category"`
	Score       int            `json:"score"`
	XPGained    int            `json:"xpGained"`
	TotalXP     int            `json:"totalXp"`
	Streak      int            `json:"streak"`
}

type LevelUp struct {
	Old   int    `json:"old"`
	New   int    `json:"new"`
	Title string `json:"title"`
}

type BadgeUnlocked struct {
	BadgeID    model.BadgeID `json:"badgeId"`
	Name       string        `json:"name"`
	UnlockedAt string        `json:"unlockedAt"`
}

func New(t Type, at time.Time, payload any) Event {
	return Event{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Type:       t,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// MemoryPublisher records events in order; used by tests and when no broker is configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{events: make([]Event, 0)}
}

func (m *MemoryPublisher) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
	return nil
}

func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *MemoryPublisher) Close() error {
	return nil
}
