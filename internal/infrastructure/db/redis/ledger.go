package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetLedger remembers which password-reset tokens have been spent.
// Key format: reset:used:<jti>
type ResetLedger struct {
	client *redis.Client
}

func NewResetLedger(client *redis.Client) *ResetLedger {
	return &ResetLedger{client: client}
}

// Consume marks tokenID as used and reports whether this was the first use.
// The mark expires with the token.
func (l *ResetLedger) Consume(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, "reset:used:"+tokenID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reset ledger: %w", err)
	}
	return ok, nil
}
