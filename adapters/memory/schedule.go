package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// ScheduleRepository is an in-memory store of reminders and events
type ScheduleRepository struct {
	mu     sync.RWMutex
	items  map[int64]*entities.ScheduledItem
	nextID int64
}

// NewScheduleRepository creates a new in-memory schedule repository
func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{
		items:  make(map[int64]*entities.ScheduledItem),
		nextID: 1,
	}
}

var _ repositories.ScheduleRepository = (*ScheduleRepository)(nil)

// Create implements repositories.ScheduleRepository
func (m *ScheduleRepository) Create(ctx context.Context, item *entities.ScheduledItem) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item.ID = m.nextID
	m.nextID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	m.items[item.ID] = copyItem(item)
	return nil
}

// GetByID implements repositories.ScheduleRepository
func (m *ScheduleRepository) GetByID(ctx context.Context, id int64) (*entities.ScheduledItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, exists := m.items[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyItem(item), nil
}

// Update implements repositories.ScheduleRepository
func (m *ScheduleRepository) Update(ctx context.Context, item *entities.ScheduledItem) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.items[item.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt

	m.items[item.ID] = copyItem(item)
	return nil
}

// Delete implements repositories.ScheduleRepository
func (m *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// List implements repositories.ScheduleRepository
func (m *ScheduleRepository) List(ctx context.Context) ([]*entities.ScheduledItem, error) {
	m.mu.RLock()
	result := make([]*entities.ScheduledItem, 0, len(m.items))
	for _, item := range m.items {
		result = append(result, copyItem(item))
	}
	m.mu.RUnlock()

	entities.SortByStartTime(result)
	return result, nil
}

func copyItem(item *entities.ScheduledItem) *entities.ScheduledItem {
	c := *item
	if item.StartTime != nil {
		t := *item.StartTime
		c.StartTime = &t
	}
	if item.EndTime != nil {
		t := *item.EndTime
		c.EndTime = &t
	}
	return &c
}
