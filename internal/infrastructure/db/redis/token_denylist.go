package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist revokes access tokens ahead of their natural expiry, backed
// by Redis. Key format: denied_token:<jti>, expiring with the token so the
// set never grows unbounded.
type TokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist creates a TokenDenylist wrapping the given Redis client.
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Deny records the token as revoked until it would have expired anyway.
func (d *TokenDenylist) Deny(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	return d.client.Set(ctx, d.key(jti), "1", ttl).Err()
}

// IsDenied reports whether the token has been revoked.
func (d *TokenDenylist) IsDenied(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return n > 0, nil
}

func (d *TokenDenylist) key(jti string) string {
	return "denied_token:" + jti
}
