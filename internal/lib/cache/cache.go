// Package cache stores generated suggestions in Redis so identical requests do
// not reach the language model twice within a day.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a suggestion stays cached.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "storymap:suggestion:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type SuggestionCache struct {
	store Store
	ttl   time.Duration
}

// NewSuggestionCache returns a cache backed by store. A nil store produces a
// cache that never hits.
func NewSuggestionCache(store Store, ttl time.Duration) *SuggestionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SuggestionCache{store: store, ttl: ttl}
}

// Key derives the Redis key for an action and prompt pair.
func Key(action, prompt string) string {
	sum := sha256.Sum256([]byte(action + "\x00" + prompt))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached suggestion and whether one was found.
func (c *SuggestionCache) Get(ctx context.Context, action, prompt string) (string, bool, error) {
	if c == nil || c.store == nil {
		return "", false, nil
	}

	val, err := c.store.Get(ctx, Key(action, prompt)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *SuggestionCache) Set(ctx context.Context, action, prompt, suggestion string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Set(ctx, Key(action, prompt), suggestion, c.ttl).Err()
}
