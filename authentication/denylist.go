package authentication

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:"

// RevokeToken marks a token id as logged out until the token would have
// expired anyway.
func RevokeToken(ctx context.Context, rdb *redis.Client, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err()
}

// IsTokenRevoked reports whether the token id is on the denylist.
func IsTokenRevoked(ctx context.Context, rdb *redis.Client, tokenID string) bool {
	_, err := rdb.Get(ctx, denylistPrefix+tokenID).Result()
	return err == nil
}
