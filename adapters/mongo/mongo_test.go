package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// TestMongoRepositories_Integration requires a running MongoDB instance
// (skipped if MONGODB_URI is not set)
func TestMongoRepositories_Integration(t *testing.T) {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration test - MONGODB_URI not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, ClientConfig{URI: mongoURI, Database: "arunika_test"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(ctx)

	if err := client.Database.Drop(ctx); err != nil {
		t.Fatalf("Failed to reset test database: %v", err)
	}
	defer client.Database.Drop(ctx)

	if err := client.EnsureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Run("ConversationHistory", func(t *testing.T) {
		repo := NewConversationRepository(client.Database)
		first := entities.NewConversationTurn("u1", "first", "one")
		second := entities.NewConversationTurn("u1", "second", "two")
		for _, turn := range []*entities.ConversationTurn{first, second} {
			if err := repo.Append(ctx, turn); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		if second.ID <= first.ID {
			t.Errorf("Expected increasing ids, got %d then %d", first.ID, second.ID)
		}

		history, err := repo.History(ctx, "u1")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 2 || history[0].UserMessage != "first" || history[1].UserMessage != "second" {
			t.Errorf("Unexpected history: %+v", history)
		}
	})

	t.Run("ScheduleCRUD", func(t *testing.T) {
		repo := NewScheduleRepository(client.Database)
		start := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

		undated := &entities.ScheduledItem{Title: "Someday"}
		dated := &entities.ScheduledItem{Title: "Dentist", StartTime: &start}
		for _, it := range []*entities.ScheduledItem{undated, dated} {
			if err := repo.Create(ctx, it); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		items, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(items) != 2 || items[0].ID != dated.ID {
			t.Fatalf("Expected dated item first, got %+v", items)
		}

		if err := repo.Delete(ctx, undated.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.GetByID(ctx, undated.ID); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		missing := &entities.ScheduledItem{ID: 9999, Title: "ghost"}
		if err := repo.Update(ctx, missing); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UserDuplicateEmail", func(t *testing.T) {
		repo := NewUserRepository(client.Database)
		if err := repo.Create(ctx, &entities.User{Email: "ana@example.com", PasswordHash: "x"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		err := repo.Create(ctx, &entities.User{Email: "Ana@Example.com", PasswordHash: "y"})
		if !errors.Is(err, repositories.ErrDuplicateEmail) {
			t.Errorf("Expected ErrDuplicateEmail, got %v", err)
		}
	})
}
