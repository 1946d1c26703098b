package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

type ScheduleRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewScheduleRepository creates a new MongoDB reminder and event repository
func NewScheduleRepository(db *mongo.Database) *ScheduleRepository {
	return &ScheduleRepository{
		db:         db,
		collection: db.Collection(scheduleCollection),
	}
}

var _ repositories.ScheduleRepository = (*ScheduleRepository)(nil)

// Create implements repositories.ScheduleRepository
func (r *ScheduleRepository) Create(ctx context.Context, item *entities.ScheduledItem) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}

	id, err := nextSequence(ctx, r.db, scheduleCollection)
	if err != nil {
		return err
	}
	item.ID = id
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to create scheduled item: %w", err)
	}
	return nil
}

// GetByID implements repositories.ScheduleRepository
func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*entities.ScheduledItem, error) {
	var item entities.ScheduledItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if isNoDocuments(err) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled item %d: %w", id, err)
	}
	return &item, nil
}

// Update implements repositories.ScheduleRepository
func (r *ScheduleRepository) Update(ctx context.Context, item *entities.ScheduledItem) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return fmt.Errorf("failed to update scheduled item %d: %w", item.ID, err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete implements repositories.ScheduleRepository
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete scheduled item %d: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// List implements repositories.ScheduleRepository. MongoDB sorts missing
// fields first, so ordering happens after decoding.
func (r *ScheduleRepository) List(ctx context.Context) ([]*entities.ScheduledItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled items: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*entities.ScheduledItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled items: %w", err)
	}
	entities.SortByStartTime(items)
	return items, nil
}
