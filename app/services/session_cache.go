// Package services provides external service integrations and technical concerns like tokens and AI insights
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "kitsune:revoked:"

// RedisTokenRevoker keeps revoked token IDs in Redis with per-entry TTLs
type RedisTokenRevoker struct {
	rc *redis.Client
}

// NewRedisTokenRevoker creates a Redis-backed revocation list
func NewRedisTokenRevoker(rc *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{rc: rc}
}

// Revoke stores the token ID until the token's natural expiry
func (r *RedisTokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.rc.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revoked token: %w", err)
	}
	return nil
}

// IsRevoked checks the revocation list for a token ID
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rc.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query revocation list: %w", err)
	}
	return n > 0, nil
}
