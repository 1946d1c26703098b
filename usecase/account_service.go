package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
	"github.com/satriahrh/arunika-assistant/internal/auth"
)

// Session is the result of a successful login.
type Session struct {
	User      *entities.User
	Token     string
	ExpiresAt time.Time
}

// AccountService registers users and issues and revokes their session tokens.
type AccountService struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(users repositories.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AccountService {
	return &AccountService{users: users, tokens: tokens, logger: logger}
}

// Register creates an account. A used email yields repositories.ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, email, password string) (*entities.User, error) {
	email = entities.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, validationError(err.Error())
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Info("Login rejected", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session token. Anonymous callers have nothing to revoke.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	return s.tokens.Revoke(ctx, claims)
}
