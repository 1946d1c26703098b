package queue

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika-assistant/adapters/memory"
	"github.com/satriahrh/arunika-assistant/domain/entities"
)

var fixedNow = time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	items []*entities.ScheduledItem
}

func (n *recordingNotifier) NotifyReminder(item *entities.ScheduledItem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
}

func TestNewReminderTask(t *testing.T) {
	future := fixedNow.Add(2 * time.Hour)
	past := fixedNow.Add(-time.Minute)

	t.Run("future reminder", func(t *testing.T) {
		task, opts, ok, err := newReminderTask(&entities.ScheduledItem{ID: 7, Title: "call mom", StartTime: &future, IsReminder: true}, fixedNow)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, TypeReminderDue, task.Type())
		assert.NotEmpty(t, opts)

		var p reminderPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &p))
		assert.Equal(t, int64(7), p.ItemID)
		assert.Equal(t, future.Unix(), p.StartUnix)
	})

	skipped := map[string]*entities.ScheduledItem{
		"event":        {ID: 1, Title: "meeting", StartTime: &future},
		"undated":      {ID: 2, Title: "someday", IsReminder: true},
		"past":         {ID: 3, Title: "late", StartTime: &past, IsReminder: true},
		"nil reminder": nil,
	}
	for name, item := range skipped {
		t.Run(name, func(t *testing.T) {
			_, _, ok, err := newReminderTask(item, fixedNow)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestReminderHandler(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewScheduleRepository()
	notifier := &recordingNotifier{}
	h := NewReminderHandler(repo, notifier, zaptest.NewLogger(t))

	start := fixedNow.Add(time.Hour)
	item := &entities.ScheduledItem{Title: "take pills", StartTime: &start, IsReminder: true}
	require.NoError(t, repo.Create(ctx, item))

	payload := func(id int64, at time.Time) *asynq.Task {
		b, err := json.Marshal(reminderPayload{ItemID: id, StartUnix: at.Unix()})
		require.NoError(t, err)
		return asynq.NewTask(TypeReminderDue, b)
	}

	require.NoError(t, h.ProcessTask(ctx, payload(item.ID, start)))
	require.Len(t, notifier.items, 1)
	assert.Equal(t, "take pills", notifier.items[0].Title)

	// rescheduled since the task was queued
	require.NoError(t, h.ProcessTask(ctx, payload(item.ID, start.Add(-time.Hour))))
	assert.Len(t, notifier.items, 1)

	// deleted
	require.NoError(t, repo.Delete(ctx, item.ID))
	require.NoError(t, h.ProcessTask(ctx, payload(item.ID, start)))
	assert.Len(t, notifier.items, 1)

	err := h.ProcessTask(ctx, asynq.NewTask(TypeReminderDue, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
