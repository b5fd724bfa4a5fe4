// Package services provides external service integrations and technical concerns like tokens and AI insights
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const selectionKeyPrefix = "kitsune:selection:"

// SelectionStore holds the per-session set of selected account identifiers.
// Selection is ephemeral console state, so it lives in the cache with an idle
// TTL rather than in the database.
type SelectionStore interface {
	Members(ctx context.Context, sessionID string) (map[string]bool, error)
	Toggle(ctx context.Context, sessionID, accountID string) (selected bool, err error)
	AddAll(ctx context.Context, sessionID string, accountIDs []string) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisSelectionStore implements SelectionStore on Redis sets
type RedisSelectionStore struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedisSelectionStore creates a Redis-backed selection store
func NewRedisSelectionStore(rc *redis.Client, ttl time.Duration) *RedisSelectionStore {
	return &RedisSelectionStore{rc: rc, ttl: ttl}
}

func selectionKey(sessionID string) string {
	return selectionKeyPrefix + sessionID
}

// Members returns the current selection set
func (s *RedisSelectionStore) Members(ctx context.Context, sessionID string) (map[string]bool, error) {
	ids, err := s.rc.SMembers(ctx, selectionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	selection := make(map[string]bool, len(ids))
	for _, id := range ids {
		selection[id] = true
	}
	return selection, nil
}

// Toggle flips membership of one account identifier and reports the new state
func (s *RedisSelectionStore) Toggle(ctx context.Context, sessionID, accountID string) (bool, error) {
	key := selectionKey(sessionID)

	isMember, err := s.rc.SIsMember(ctx, key, accountID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check selection membership: %w", err)
	}

	if isMember {
		if err := s.rc.SRem(ctx, key, accountID).Err(); err != nil {
			return false, fmt.Errorf("failed to deselect: %w", err)
		}
	} else {
		if err := s.rc.SAdd(ctx, key, accountID).Err(); err != nil {
			return false, fmt.Errorf("failed to select: %w", err)
		}
	}

	if err := s.rc.Expire(ctx, key, s.ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to refresh selection TTL: %w", err)
	}

	return !isMember, nil
}

// AddAll selects every identifier in the given set
func (s *RedisSelectionStore) AddAll(ctx context.Context, sessionID string, accountIDs []string) error {
	if len(accountIDs) == 0 {
		return nil
	}

	key := selectionKey(sessionID)
	members := make([]any, 0, len(accountIDs))
	for _, id := range accountIDs {
		members = append(members, id)
	}

	if err := s.rc.SAdd(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("failed to select page: %w", err)
	}
	if err := s.rc.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh selection TTL: %w", err)
	}
	return nil
}

// Clear empties the selection set
func (s *RedisSelectionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rc.Del(ctx, selectionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}
	return nil
}
