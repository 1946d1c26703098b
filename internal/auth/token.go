// Package auth issues and validates the signed session tokens that identify callers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims represents the claims in our JWT token
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenConfig holds signing settings
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// ValidateTokenConfig validates the token configuration
func ValidateTokenConfig(config TokenConfig) error {
	if config.Secret == "" {
		return errors.New("JWT secret is required")
	}
	if len(config.Secret) < 16 {
		return errors.New("JWT secret must be at least 16 characters")
	}
	if config.TTL < 0 {
		return errors.New("token TTL cannot be negative")
	}
	return nil
}

// TokenManager signs tokens with HS256 and checks them against a denylist.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	denylist repositories.TokenDenylist
	logger   *zap.Logger
	now      func() time.Time
}

// NewTokenManager creates a token manager, applying defaults for empty settings.
func NewTokenManager(config TokenConfig, denylist repositories.TokenDenylist, logger *zap.Logger) (*TokenManager, error) {
	if err := ValidateTokenConfig(config); err != nil {
		return nil, fmt.Errorf("invalid token config: %w", err)
	}
	if denylist == nil {
		return nil, errors.New("token denylist is required")
	}

	if config.TTL == 0 {
		config.TTL = 7 * 24 * time.Hour
		logger.Info("Using default token TTL", zap.Duration("ttl", config.TTL))
	}
	if config.Issuer == "" {
		config.Issuer = "arunika-assistant"
	}

	return &TokenManager{
		secret:   []byte(config.Secret),
		ttl:      config.TTL,
		issuer:   config.Issuer,
		denylist: denylist,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Issue creates a signed token for the user.
func (m *TokenManager) Issue(user *entities.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate parses the token and rejects it if it is expired, forged or revoked.
func (m *TokenManager) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := m.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke adds the token id to the denylist until the token would expire.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrInvalidToken
	}
	expiresAt := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := m.denylist.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	m.logger.Info("Token revoked", zap.String("user_id", claims.UserID), zap.String("token_id", claims.ID))
	return nil
}
