// Package redis keeps revoked session tokens in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

const revokedKeyPrefix = "revoked:"

// TokenDenylist stores one key per revoked token id, expiring with the token.
type TokenDenylist struct {
	client *redis.Client
}

// NewClient parses a redis:// URL and verifies the server answers.
func NewClient(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis: URL is empty")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	logger.Info("Successfully connected to Redis", zap.String("addr", opt.Addr), zap.Int("db", opt.DB))
	return c, nil
}

func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

var _ repositories.TokenDenylist = (*TokenDenylist)(nil)

// Revoke implements repositories.TokenDenylist
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements repositories.TokenDenylist
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis: check token: %w", err)
	}
	return n > 0, nil
}
