package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

func TestConversationRepository_HistoryIsOrdered(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()

	// A clock that jumps backwards must not break ordering.
	clock := []time.Time{
		time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC),
	}
	i := 0
	repo.now = func() time.Time {
		t := clock[i%len(clock)]
		i++
		return t
	}

	for _, q := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Append(ctx, entities.NewConversationTurn("", q, "answer to "+q)))
	}
	require.NoError(t, repo.Append(ctx, entities.NewConversationTurn("someone-else", "hidden", "hidden")))

	history, err := repo.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, history, 3)

	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp), "timestamps must be non-decreasing")
		assert.Greater(t, history[i].ID, history[i-1].ID)
	}
	assert.Equal(t, "first", history[0].UserMessage)
	assert.Equal(t, "third", history[2].UserMessage)
}

func TestConversationRepository_RejectsEmptyTurn(t *testing.T) {
	repo := NewConversationRepository()
	err := repo.Append(context.Background(), entities.NewConversationTurn("", "question", ""))
	assert.ErrorIs(t, err, entities.ErrValidation)

	history, err := repo.History(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScheduleRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository()

	start := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	item := &entities.ScheduledItem{Title: "Dentist", StartTime: &start}
	require.NoError(t, repo.Create(ctx, item))
	assert.Equal(t, int64(1), item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", got.Title)

	// Mutating the returned copy must not change the stored item.
	got.Title = "changed"
	again, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", again.Title)

	again.Description = "Bring insurance card"
	require.NoError(t, repo.Update(ctx, again))
	updated, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bring insurance card", updated.Description)

	require.NoError(t, repo.Delete(ctx, item.ID))
	_, err = repo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, again), repositories.ErrNotFound)
}

func TestScheduleRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository()

	late := time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC)
	early := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &entities.ScheduledItem{Title: "undated"}))
	require.NoError(t, repo.Create(ctx, &entities.ScheduledItem{Title: "late", StartTime: &late}))
	require.NoError(t, repo.Create(ctx, &entities.ScheduledItem{Title: "early", StartTime: &early}))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "early", items[0].Title)
	assert.Equal(t, "late", items[1].Title)
	assert.Equal(t, "undated", items[2].Title)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &entities.User{Email: "ana@example.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &entities.User{Email: " ANA@example.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

	u, err := repo.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "h", u.PasswordHash)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTokenDenylist(t *testing.T) {
	ctx := context.Background()
	d := NewTokenDenylist()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	require.NoError(t, d.Revoke(ctx, "jti-1", now.Add(time.Hour)))

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entries are forgotten")
}
