package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/satriahrh/arunika-assistant/domain/entities"
)

var (
	// ErrNotFound is returned when a record with the requested identifier does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an account with the same email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// ConversationRepository is the append-only conversation log
type ConversationRepository interface {
	Append(ctx context.Context, turn *entities.ConversationTurn) error
	// History returns every turn of the user in ascending timestamp order.
	History(ctx context.Context, userID string) ([]*entities.ConversationTurn, error)
}

// ScheduleRepository defines data access methods for reminders and events
type ScheduleRepository interface {
	Create(ctx context.Context, item *entities.ScheduledItem) error
	GetByID(ctx context.Context, id int64) (*entities.ScheduledItem, error)
	Update(ctx context.Context, item *entities.ScheduledItem) error
	Delete(ctx context.Context, id int64) error
	// List returns items ascending by start time; items without a start time come last.
	List(ctx context.Context) ([]*entities.ScheduledItem, error)
}

// UserRepository defines data access methods for users
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// TokenDenylist remembers revoked token ids until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ReminderScheduler arranges for a reminder to fire at its start time.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, item *entities.ScheduledItem) error
}
