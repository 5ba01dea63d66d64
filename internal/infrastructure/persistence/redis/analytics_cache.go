package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

// analyticsKeyPrefix namespaces cached snapshots per user.
const analyticsKeyPrefix = "analytics:user:"

// defaultAnalyticsTTL bounds staleness even if an invalidation is lost.
const defaultAnalyticsTTL = 5 * time.Minute

// AnalyticsCache implements progress.AnalyticsCache on Redis. Snapshots are
// stored as JSON with a TTL; every ledger write invalidates the user's entry.
type AnalyticsCache struct {
	client *Client
	ttl    time.Duration
}

// NewAnalyticsCache creates an AnalyticsCache with the default TTL.
func NewAnalyticsCache(client *Client) *AnalyticsCache {
	return &AnalyticsCache{client: client, ttl: defaultAnalyticsTTL}
}

func analyticsKey(userID string) string {
	return analyticsKeyPrefix + userID
}

// Get returns the cached snapshot for a user.
func (c *AnalyticsCache) Get(ctx context.Context, userID string) (progress.AnalyticsSnapshot, error) {
	var snap progress.AnalyticsSnapshot

	data, err := c.client.Redis().Get(ctx, analyticsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snap, shared.NewDomainError("progress", "GetAnalyticsCache", shared.ErrNotFound, "snapshot not cached")
		}
		return snap, fmt.Errorf("analytics cache: failed to read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt entry reads as a miss; the next Set overwrites it.
		return progress.AnalyticsSnapshot{}, shared.NewDomainError("progress", "GetAnalyticsCache", shared.ErrNotFound, "snapshot not decodable")
	}
	return snap, nil
}

// Set stores a snapshot with the cache TTL.
func (c *AnalyticsCache) Set(ctx context.Context, userID string, snap progress.AnalyticsSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("analytics cache: failed to encode snapshot: %w", err)
	}

	if err := c.client.Redis().Set(ctx, analyticsKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("analytics cache: failed to store snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a user.
func (c *AnalyticsCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Redis().Del(ctx, analyticsKey(userID)).Err(); err != nil {
		return fmt.Errorf("analytics cache: failed to invalidate snapshot: %w", err)
	}
	return nil
}
