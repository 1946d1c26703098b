package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika-assistant/adapters/memory"
	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
	"github.com/satriahrh/arunika-assistant/internal/intent"
)

func TestScheduleService_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewScheduleRepository()
	reminders := &fakeReminders{}
	s := NewScheduleService(repo, reminders, zaptest.NewLogger(t))

	start := fixedNow.Add(24 * time.Hour)
	item := &entities.ScheduledItem{Title: "Dentist", Description: "bring card", StartTime: &start}
	require.NoError(t, s.Create(ctx, item))
	assert.Empty(t, reminders.scheduled, "events are not scheduled")

	title := "Dentist visit"
	isReminder := true
	updated, err := s.Update(ctx, item.ID, entities.ScheduledItemPatch{Title: &title, IsReminder: &isReminder})
	require.NoError(t, err)
	assert.Equal(t, "Dentist visit", updated.Title)
	assert.Equal(t, "bring card", updated.Description)
	require.NotNil(t, updated.StartTime)
	assert.True(t, updated.StartTime.Equal(start))
	assert.Equal(t, []int64{item.ID}, reminders.scheduled)

	_, err = s.Update(ctx, item.ID, entities.ScheduledItemPatch{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	before := start.Add(-time.Hour)
	_, err = s.Update(ctx, item.ID, entities.ScheduledItemPatch{EndTime: &before})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = s.Update(ctx, 999, entities.ScheduledItemPatch{Title: &title})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestScheduleService_DeleteMissing(t *testing.T) {
	s := NewScheduleService(memory.NewScheduleRepository(), nil, zaptest.NewLogger(t))
	err := s.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestScheduleService_ReminderFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewScheduleRepository()
	s := NewScheduleService(repo, &fakeReminders{err: errBoom}, zaptest.NewLogger(t))

	start := fixedNow.Add(time.Hour)
	answer, err := s.ApplyIntent(ctx, intent.Intent{
		Kind:       intent.KindCreate,
		Title:      "remind me to stretch",
		StartTime:  &start,
		IsReminder: true,
	}, "Will do.")
	require.NoError(t, err)
	assert.Equal(t, "Will do. Saved reminder (ID: 1).", answer)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestScheduleService_ApplyIntentQuestion(t *testing.T) {
	s := NewScheduleService(memory.NewScheduleRepository(), nil, zaptest.NewLogger(t))
	answer, err := s.ApplyIntent(context.Background(), intent.Intent{Kind: intent.KindQuestion}, "It is sunny.")
	require.NoError(t, err)
	assert.Equal(t, "It is sunny.", answer)
}

func TestScheduleService_ApplyIntentCreateEvent(t *testing.T) {
	ctx := context.Background()
	s := NewScheduleService(memory.NewScheduleRepository(), nil, zaptest.NewLogger(t))

	answer, err := s.ApplyIntent(ctx, intent.Intent{Kind: intent.KindCreate, Title: "appointment with the vet"}, "Noted.")
	require.NoError(t, err)
	assert.Equal(t, "Noted. Saved event (ID: 1).", answer)
}
