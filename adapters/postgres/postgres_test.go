package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

func TestNormalizeDSN(t *testing.T) {
	tests := map[string]string{
		"":                                     "",
		"  postgres://u:p@h/db  ":              "postgres://u:p@h/db",
		"postgresql+asyncpg://u:p@h:5432/db":   "postgresql://u:p@h:5432/db",
		"postgres+pgx://u:p@h/db?sslmode=none": "postgres://u:p@h/db?sslmode=none",
	}
	for in, want := range tests {
		if got := normalizeDSN(in); got != want {
			t.Errorf("normalizeDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

// newTestPool connects to DB_URL and resets the tables. Skipped when DB_URL is not set.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL integration test - DB_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, dsn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE chats, scheduled_items, users RESTART IDENTITY`); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	return pool
}

func TestPostgresRepositories_Integration(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	t.Run("ConversationHistory", func(t *testing.T) {
		repo := NewConversationRepository(pool)
		for _, msg := range []string{"first", "second"} {
			if err := repo.Append(ctx, entities.NewConversationTurn("u1", msg, "reply to "+msg)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		if err := repo.Append(ctx, entities.NewConversationTurn("u2", "other", "reply")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		history, err := repo.History(ctx, "u1")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("Expected 2 turns, got %d", len(history))
		}
		if history[0].UserMessage != "first" || history[1].UserMessage != "second" {
			t.Errorf("Unexpected order: %q, %q", history[0].UserMessage, history[1].UserMessage)
		}
	})

	t.Run("ScheduleCRUD", func(t *testing.T) {
		repo := NewScheduleRepository(pool)
		start := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

		undated := &entities.ScheduledItem{Title: "Someday"}
		dated := &entities.ScheduledItem{Title: "Dentist", StartTime: &start, IsReminder: true}
		for _, it := range []*entities.ScheduledItem{undated, dated} {
			if err := repo.Create(ctx, it); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(items) != 2 || items[0].ID != dated.ID || items[1].ID != undated.ID {
			t.Fatalf("Expected dated item first, got %+v", items)
		}

		dated.Title = "Dentist visit"
		if err := repo.Update(ctx, dated); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		got, err := repo.GetByID(ctx, dated.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Title != "Dentist visit" || got.StartTime == nil || !got.StartTime.Equal(start) {
			t.Errorf("Unexpected item after update: %+v", got)
		}

		if err := repo.Delete(ctx, dated.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := repo.Delete(ctx, dated.ID); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
		if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UserDuplicateEmail", func(t *testing.T) {
		repo := NewUserRepository(pool)
		if err := repo.Create(ctx, &entities.User{Email: "ana@example.com", PasswordHash: "x"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		err := repo.Create(ctx, &entities.User{Email: "ANA@example.com", PasswordHash: "y"})
		if !errors.Is(err, repositories.ErrDuplicateEmail) {
			t.Errorf("Expected ErrDuplicateEmail, got %v", err)
		}

		u, err := repo.GetByEmail(ctx, " Ana@Example.com ")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if u.PasswordHash != "x" {
			t.Errorf("Expected first account, got %+v", u)
		}
	})
}
