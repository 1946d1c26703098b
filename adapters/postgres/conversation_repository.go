package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

type ConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

var _ repositories.ConversationRepository = (*ConversationRepository)(nil)

// Append implements repositories.ConversationRepository. The timestamp is taken
// from the database clock so concurrent writers stay ordered.
func (r *ConversationRepository) Append(ctx context.Context, turn *entities.ConversationTurn) error {
	if r == nil || r.pool == nil {
		return errors.New("postgres ConversationRepository: nil pool")
	}
	if turn == nil {
		return errors.New("turn cannot be nil")
	}
	if err := turn.Validate(); err != nil {
		return err
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO chats (user_id, user_message, assistant_response, timestamp)
		VALUES ($1, $2, $3, now())
		RETURNING id, timestamp
	`, turn.UserID, turn.UserMessage, turn.AssistantResponse).Scan(&turn.ID, &turn.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append chat: %w", err)
	}
	turn.Timestamp = turn.Timestamp.UTC()
	return nil
}

// History implements repositories.ConversationRepository
func (r *ConversationRepository) History(ctx context.Context, userID string) ([]*entities.ConversationTurn, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("postgres ConversationRepository: nil pool")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, user_message, assistant_response, timestamp
		FROM chats
		WHERE user_id = $1
		ORDER BY timestamp ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	turns := make([]*entities.ConversationTurn, 0)
	for rows.Next() {
		var t entities.ConversationTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.UserMessage, &t.AssistantResponse, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		t.Timestamp = t.Timestamp.UTC()
		turns = append(turns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return turns, nil
}
