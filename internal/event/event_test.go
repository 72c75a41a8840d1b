package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aesthetica/internal/logger"
	"aesthetica/internal/model"
)

func TestNewStampsIDAndUTC(t *testing.T) {
	at := time.Date(2026, 4, 10, 20, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))
	e := New(TypeLevelUp, at, LevelUp{Old: 1, New: 2, Title: "Junior Observer"})

	id, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, time.UTC, e.OccurredAt.Location())

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"level.up"`)
	assert.Contains(t, string(raw), `"title":"Junior Observer"`)
}

func TestMemoryPublisherKeepsOrder(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, p.Publish(ctx, New(TypeTaskCompleted, now, TaskCompleted{TaskType: model.TaskObservation})))
	require.NoError(t, p.Publish(ctx, New(TypeBadgeUnlocked, now, BadgeUnlocked{BadgeID: "first_step"})))

	events := p.Events()
	require.Len(t, events, 2)
	assert.Equal(t, TypeTaskCompleted, events[0].Type)
	assert.Equal(t, TypeBadgeUnlocked, events[1].Type)
	assert.NoError(t, p.Close())
}

func TestAMQPPublisherDisabledWithoutURI(t *testing.T) {
	p, err := NewAMQPPublisher("", "", logger.Nop())
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish(context.Background(), New(TypeTaskCompleted, time.Now(), nil)))
	assert.NoError(t, p.Close())
}
