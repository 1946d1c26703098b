package memory

import (
	"context"
	"sync"
	"time"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// TokenDenylist keeps revoked token ids in memory until they expire.
type TokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

var _ repositories.TokenDenylist = (*TokenDenylist)(nil)

// Revoke implements repositories.TokenDenylist
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.revoked[tokenID] = expiresAt
	d.pruneLocked()
	return nil
}

// IsRevoked implements repositories.TokenDenylist
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if d.now().After(exp) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (d *TokenDenylist) pruneLocked() {
	now := d.now()
	for id, exp := range d.revoked {
		if now.After(exp) {
			delete(d.revoked, id)
		}
	}
}
