package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

// pointsKey is the sorted set holding user totals; score is the point total,
// member is the user ID.
const pointsKey = "leaderboard:points"

// PointsLeaderboard implements points.Leaderboard on a Redis sorted set.
type PointsLeaderboard struct {
	client *Client
}

// NewPointsLeaderboard creates a PointsLeaderboard.
func NewPointsLeaderboard(client *Client) *PointsLeaderboard {
	return &PointsLeaderboard{client: client}
}

// SetScore records a user's current total.
func (l *PointsLeaderboard) SetScore(ctx context.Context, userID string, totalPoints int) error {
	err := l.client.Redis().ZAdd(ctx, pointsKey, redis.Z{
		Score:  float64(totalPoints),
		Member: userID,
	}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard: failed to set score: %w", err)
	}
	return nil
}

// Top returns the highest totals, best first.
func (l *PointsLeaderboard) Top(ctx context.Context, limit int) ([]points.LeaderboardEntry, error) {
	members, err := l.client.Redis().ZRevRangeWithScores(ctx, pointsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: failed to read top: %w", err)
	}

	entries := make([]points.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		userID, ok := m.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, points.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      userID,
			TotalPoints: int(m.Score),
		})
	}
	return entries, nil
}

// Rank returns a user's 1-based rank.
func (l *PointsLeaderboard) Rank(ctx context.Context, userID string) (int, error) {
	rank, err := l.client.Redis().ZRevRank(ctx, pointsKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, shared.NewDomainError("points", "Rank", shared.ErrNotFound, "user has no score")
		}
		return 0, fmt.Errorf("leaderboard: failed to read rank: %w", err)
	}
	return int(rank) + 1, nil
}

// Rebuild replaces the projection with the given balances in one pipeline.
func (l *PointsLeaderboard) Rebuild(ctx context.Context, balances []*points.Balance) error {
	members := make([]redis.Z, 0, len(balances))
	for _, b := range balances {
		members = append(members, redis.Z{
			Score:  float64(b.TotalPoints),
			Member: b.UserID,
		})
	}

	pipe := l.client.Redis().TxPipeline()
	pipe.Del(ctx, pointsKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, pointsKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard: failed to rebuild: %w", err)
	}
	return nil
}
