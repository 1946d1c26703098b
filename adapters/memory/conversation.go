// Package memory provides in-memory repositories for development and tests.
// Data is lost when the process exits.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// ConversationRepository is an in-memory append-only conversation log
type ConversationRepository struct {
	mu     sync.RWMutex
	turns  []*entities.ConversationTurn
	nextID int64
	now    func() time.Time
}

// NewConversationRepository creates a new in-memory conversation repository
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{nextID: 1, now: time.Now}
}

var _ repositories.ConversationRepository = (*ConversationRepository)(nil)

// Append implements repositories.ConversationRepository
func (m *ConversationRepository) Append(ctx context.Context, turn *entities.ConversationTurn) error {
	if turn == nil {
		return errors.New("turn cannot be nil")
	}
	if err := turn.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Stamp under the lock so timestamps never go backwards in insertion order.
	ts := m.now().UTC()
	if n := len(m.turns); n > 0 && ts.Before(m.turns[n-1].Timestamp) {
		ts = m.turns[n-1].Timestamp
	}
	turn.ID = m.nextID
	turn.Timestamp = ts
	m.nextID++

	turnCopy := *turn
	m.turns = append(m.turns, &turnCopy)
	return nil
}

// History implements repositories.ConversationRepository
func (m *ConversationRepository) History(ctx context.Context, userID string) ([]*entities.ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.ConversationTurn, 0)
	for _, t := range m.turns {
		if t.UserID != userID {
			continue
		}
		turnCopy := *t
		result = append(result, &turnCopy)
	}
	return result, nil
}
