package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika-assistant/adapters/memory"
	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
	"github.com/satriahrh/arunika-assistant/internal/auth"
)

func newAccountService(t *testing.T) (*AccountService, *auth.TokenManager) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: "0123456789abcdef-test", TTL: time.Hour}, memory.NewTokenDenylist(), logger)
	require.NoError(t, err)
	return NewAccountService(memory.NewUserRepository(), tokens, logger), tokens
}

func TestAccountService_RegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	s, tokens := newAccountService(t)

	user, err := s.Register(ctx, " Ana@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	_, err = s.Register(ctx, "ana@example.com", "another password")
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

	_, err = s.Login(ctx, "ana@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := s.Login(ctx, "ANA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	claims, err := tokens.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	require.NoError(t, s.Logout(ctx, claims))
	_, err = tokens.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	assert.NoError(t, s.Logout(ctx, nil))
}

func TestAccountService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newAccountService(t)

	tests := map[string][2]string{
		"missing email":    {"", "correct horse"},
		"missing password": {"ana@example.com", ""},
		"short password":   {"ana@example.com", "short"},
		"bad email":        {"not-an-email", "correct horse"},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(ctx, in[0], in[1])
			assert.ErrorIs(t, err, entities.ErrValidation)
		})
	}
}
