// internal/profile/cache.go
// Redis-backed snapshot cache in front of the profile repository

package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
)

const cacheKeyPrefix = "kinship:profile:"

// CachedRepository serves GetProfile from Redis when possible.
// Cache failures degrade to the underlying repository.
type CachedRepository struct {
	next   Repository
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedRepository wraps next with a Redis cache
func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logging.With().Str("component", "profile_cache").Logger(),
	}
}

// GetProfile returns the cached snapshot or loads and caches it
func (c *CachedRepository) GetProfile(ctx context.Context, id string) (*CulturalProfile, error) {
	key := cacheKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p CulturalProfile
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		c.logger.Warn().Str("profile_id", id).Msg("discarding unreadable cached profile")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("profile_id", id).Msg("profile cache read failed")
	}

	p, err := c.next.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("profile_id", id).Msg("profile cache write failed")
		}
	}

	return p, nil
}

// ListCandidates is not cached; pools change faster than single snapshots
func (c *CachedRepository) ListCandidates(ctx context.Context, excludeID string, filter *CandidateFilter) ([]*CulturalProfile, error) {
	return c.next.ListCandidates(ctx, excludeID, filter)
}

// Invalidate drops a cached snapshot after the profile store updates it
func (c *CachedRepository) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, cacheKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to invalidate profile %s: %w", id, err)
	}
	return nil
}
