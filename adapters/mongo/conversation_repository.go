package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

type ConversationRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewConversationRepository creates a new MongoDB conversation repository
func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{
		db:         db,
		collection: db.Collection(chatsCollection),
	}
}

var _ repositories.ConversationRepository = (*ConversationRepository)(nil)

// Append implements repositories.ConversationRepository
func (r *ConversationRepository) Append(ctx context.Context, turn *entities.ConversationTurn) error {
	if turn == nil {
		return errors.New("turn cannot be nil")
	}
	if err := turn.Validate(); err != nil {
		return err
	}

	id, err := nextSequence(ctx, r.db, chatsCollection)
	if err != nil {
		return err
	}
	turn.ID = id
	// BSON dates keep millisecond precision.
	turn.Timestamp = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, turn); err != nil {
		return fmt.Errorf("failed to append chat: %w", err)
	}
	return nil
}

// History implements repositories.ConversationRepository
func (r *ConversationRepository) History(ctx context.Context, userID string) ([]*entities.ConversationTurn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find chats: %w", err)
	}
	defer cursor.Close(ctx)

	turns := make([]*entities.ConversationTurn, 0)
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	return turns, nil
}
