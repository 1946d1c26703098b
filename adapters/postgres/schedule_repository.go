package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

var _ repositories.ScheduleRepository = (*ScheduleRepository)(nil)

const scheduledItemColumns = `id, title, description, start_time, end_time, is_reminder, created_at`

// Create implements repositories.ScheduleRepository
func (r *ScheduleRepository) Create(ctx context.Context, item *entities.ScheduledItem) error {
	if r == nil || r.pool == nil {
		return errors.New("postgres ScheduleRepository: nil pool")
	}
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO scheduled_items (title, description, start_time, end_time, is_reminder, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, item.Title, item.Description, item.StartTime, item.EndTime, item.IsReminder, item.CreatedAt).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create scheduled item: %w", err)
	}
	return nil
}

// GetByID implements repositories.ScheduleRepository
func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*entities.ScheduledItem, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("postgres ScheduleRepository: nil pool")
	}

	row := r.pool.QueryRow(ctx, `SELECT `+scheduledItemColumns+` FROM scheduled_items WHERE id = $1`, id)
	item, err := scanScheduledItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled item %d: %w", id, err)
	}
	return item, nil
}

// Update implements repositories.ScheduleRepository
func (r *ScheduleRepository) Update(ctx context.Context, item *entities.ScheduledItem) error {
	if r == nil || r.pool == nil {
		return errors.New("postgres ScheduleRepository: nil pool")
	}
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE scheduled_items
		SET title = $2, description = $3, start_time = $4, end_time = $5, is_reminder = $6
		WHERE id = $1
	`, item.ID, item.Title, item.Description, item.StartTime, item.EndTime, item.IsReminder)
	if err != nil {
		return fmt.Errorf("failed to update scheduled item %d: %w", item.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete implements repositories.ScheduleRepository
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.pool == nil {
		return errors.New("postgres ScheduleRepository: nil pool")
	}

	ct, err := r.pool.Exec(ctx, `DELETE FROM scheduled_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled item %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// List implements repositories.ScheduleRepository
func (r *ScheduleRepository) List(ctx context.Context) ([]*entities.ScheduledItem, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("postgres ScheduleRepository: nil pool")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+scheduledItemColumns+`
		FROM scheduled_items
		ORDER BY start_time ASC NULLS LAST, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled items: %w", err)
	}
	defer rows.Close()

	items := make([]*entities.ScheduledItem, 0)
	for rows.Next() {
		item, err := scanScheduledItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanScheduledItem(row pgx.Row) (*entities.ScheduledItem, error) {
	var (
		item  entities.ScheduledItem
		start *time.Time
		end   *time.Time
	)
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &start, &end, &item.IsReminder, &item.CreatedAt); err != nil {
		return nil, err
	}
	if start != nil {
		t := start.UTC()
		item.StartTime = &t
	}
	if end != nil {
		t := end.UTC()
		item.EndTime = &t
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}
