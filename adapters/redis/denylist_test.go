package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

func TestTokenDenylist_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis integration test - REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, url, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer client.Close()

	d := NewTokenDenylist(client)
	jti := uuid.NewString()
	defer client.Del(ctx, revokedKeyPrefix+jti)

	revoked, err := d.IsRevoked(ctx, jti)
	if err != nil || revoked {
		t.Fatalf("fresh token should not be revoked (revoked=%v, err=%v)", revoked, err)
	}

	if err := d.Revoke(ctx, jti, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	revoked, err = d.IsRevoked(ctx, jti)
	if err != nil || !revoked {
		t.Fatalf("token should be revoked (revoked=%v, err=%v)", revoked, err)
	}

	ttl, err := client.TTL(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("Expected TTL within one minute, got %v", ttl)
	}

	expired := uuid.NewString()
	if err := d.Revoke(ctx, expired, time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("Revoke of expired token failed: %v", err)
	}
	if revoked, _ := d.IsRevoked(ctx, expired); revoked {
		t.Error("already expired token should not be stored")
	}
}
