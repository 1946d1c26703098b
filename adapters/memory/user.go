package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// UserRepository is an in-memory account store
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*entities.User // id -> user
	byEmail map[string]*entities.User // email -> user
}

// NewUserRepository creates a new in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*entities.User),
		byEmail: make(map[string]*entities.User),
	}
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// Create implements repositories.UserRepository
func (m *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	user.Email = entities.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[user.Email]; exists {
		return repositories.ErrDuplicateEmail
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	userCopy := *user
	m.users[user.ID] = &userCopy
	m.byEmail[user.Email] = &userCopy
	return nil
}

// GetByID implements repositories.UserRepository
func (m *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

// GetByEmail implements repositories.UserRepository
func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.byEmail[entities.NormalizeEmail(email)]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	userCopy := *user
	return &userCopy, nil
}
