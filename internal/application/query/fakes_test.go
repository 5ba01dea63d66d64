package query

import (
	"context"
	"sort"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/internal/domain/streak"
)

// Minimal in-memory fakes for the read side. Only the listing surface is
// exercised by queries; writes exist so tests can seed rows.

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func notFoundErr(domain string) error {
	return shared.NewDomainError(domain, "Get", shared.ErrNotFound, "row not found")
}

type fakeProgressRepo struct {
	rows []*progress.TopicProgress
}

func (r *fakeProgressRepo) GetByUserAndTopic(_ context.Context, userID progress.UserID, topicID progress.TopicID) (*progress.TopicProgress, error) {
	for _, p := range r.rows {
		if p.UserID == userID && p.TopicID == topicID {
			return p, nil
		}
	}
	return nil, notFoundErr("progress")
}

func (r *fakeProgressRepo) Create(_ context.Context, p *progress.TopicProgress) error {
	r.rows = append(r.rows, p)
	return nil
}

func (r *fakeProgressRepo) Update(context.Context, *progress.TopicProgress) error { return nil }

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID progress.UserID) ([]*progress.TopicProgress, error) {
	var out []*progress.TopicProgress
	for _, p := range r.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) CountCompleted(_ context.Context, userID progress.UserID) (int, error) {
	count := 0
	for _, p := range r.rows {
		if p.UserID == userID && p.IsCompleted() {
			count++
		}
	}
	return count, nil
}

type fakeResponseRepo struct {
	rows []*progress.Response
}

func (r *fakeResponseRepo) Create(_ context.Context, resp *progress.Response) error {
	r.rows = append(r.rows, resp)
	return nil
}

func (r *fakeResponseRepo) ListByUser(_ context.Context, userID progress.UserID) ([]*progress.Response, error) {
	var out []*progress.Response
	for _, resp := range r.rows {
		if resp.UserID == userID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) CountByUser(_ context.Context, userID progress.UserID) (int, int, error) {
	total, correct := 0, 0
	for _, resp := range r.rows {
		if resp.UserID != userID {
			continue
		}
		total++
		if resp.IsCorrect {
			correct++
		}
	}
	return total, correct, nil
}

type fakeSessionRepo struct {
	rows []*progress.PracticeSession
}

func (r *fakeSessionRepo) Create(_ context.Context, s *progress.PracticeSession) error {
	r.rows = append(r.rows, s)
	return nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID progress.UserID, limit int) ([]*progress.PracticeSession, error) {
	var out []*progress.PracticeSession
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].UserID == userID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

type fakeStreakRepo struct {
	rows map[string]*streak.Streak
}

func (r *fakeStreakRepo) GetByUser(_ context.Context, userID string) (*streak.Streak, error) {
	s, ok := r.rows[userID]
	if !ok {
		return nil, notFoundErr("streak")
	}
	return s, nil
}

func (r *fakeStreakRepo) Create(_ context.Context, s *streak.Streak) error {
	if r.rows == nil {
		r.rows = make(map[string]*streak.Streak)
	}
	r.rows[s.UserID] = s
	return nil
}

func (r *fakeStreakRepo) Update(context.Context, *streak.Streak) error { return nil }

type fakePointsRepo struct {
	rows map[string]*points.Balance

	topErr error
}

func (r *fakePointsRepo) GetByUser(_ context.Context, userID string) (*points.Balance, error) {
	b, ok := r.rows[userID]
	if !ok {
		return nil, notFoundErr("points")
	}
	return b, nil
}

func (r *fakePointsRepo) Create(_ context.Context, b *points.Balance) error {
	if r.rows == nil {
		r.rows = make(map[string]*points.Balance)
	}
	r.rows[b.UserID] = b
	return nil
}

func (r *fakePointsRepo) Increment(_ context.Context, userID string, amount int) (int, error) {
	b, ok := r.rows[userID]
	if !ok {
		return 0, notFoundErr("points")
	}
	b.TotalPoints += amount
	return b.TotalPoints, nil
}

func (r *fakePointsRepo) TopBalances(_ context.Context, limit int) ([]*points.Balance, error) {
	if r.topErr != nil {
		return nil, r.topErr
	}
	var out []*points.Balance
	for _, b := range r.rows {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCatalogRepo struct {
	entries []*achievement.Achievement
}

func (r *fakeCatalogRepo) List(context.Context) ([]*achievement.Achievement, error) {
	return r.entries, nil
}

func (r *fakeCatalogRepo) GetByID(_ context.Context, id string) (*achievement.Achievement, error) {
	for _, a := range r.entries {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, notFoundErr("achievement")
}

func (r *fakeCatalogRepo) Create(_ context.Context, a *achievement.Achievement) error {
	r.entries = append(r.entries, a)
	return nil
}

func (r *fakeCatalogRepo) Update(context.Context, *achievement.Achievement) error { return nil }
func (r *fakeCatalogRepo) Delete(context.Context, string) error                   { return nil }

type fakeUnlockRepo struct {
	details []*achievement.UnlockedDetail
}

func (r *fakeUnlockRepo) ListByUser(context.Context, string) ([]*achievement.Unlock, error) {
	return nil, nil
}

func (r *fakeUnlockRepo) ListIDsByUser(context.Context, string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (r *fakeUnlockRepo) Exists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (r *fakeUnlockRepo) Create(context.Context, *achievement.Unlock) error { return nil }

func (r *fakeUnlockRepo) ListDetailsByUser(_ context.Context, userID string) ([]*achievement.UnlockedDetail, error) {
	return r.details, nil
}

// fakeAnalyticsCache is an in-memory progress.AnalyticsCache.
type fakeAnalyticsCache struct {
	snaps map[string]progress.AnalyticsSnapshot

	gets, sets int
}

func (c *fakeAnalyticsCache) Get(_ context.Context, userID string) (progress.AnalyticsSnapshot, error) {
	c.gets++
	snap, ok := c.snaps[userID]
	if !ok {
		return progress.AnalyticsSnapshot{}, notFoundErr("progress")
	}
	return snap, nil
}

func (c *fakeAnalyticsCache) Set(_ context.Context, userID string, snap progress.AnalyticsSnapshot) error {
	c.sets++
	if c.snaps == nil {
		c.snaps = make(map[string]progress.AnalyticsSnapshot)
	}
	c.snaps[userID] = snap
	return nil
}

func (c *fakeAnalyticsCache) Invalidate(_ context.Context, userID string) error {
	delete(c.snaps, userID)
	return nil
}

// fakeLeaderboard is an in-memory points.Leaderboard.
type fakeLeaderboard struct {
	scores map[string]int

	err error // when set, every read fails
}

func (l *fakeLeaderboard) SetScore(_ context.Context, userID string, totalPoints int) error {
	if l.scores == nil {
		l.scores = make(map[string]int)
	}
	l.scores[userID] = totalPoints
	return nil
}

func (l *fakeLeaderboard) Top(_ context.Context, limit int) ([]points.LeaderboardEntry, error) {
	if l.err != nil {
		return nil, l.err
	}
	type pair struct {
		user  string
		score int
	}
	var pairs []pair
	for u, s := range l.scores {
		pairs = append(pairs, pair{u, s})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].user < pairs[j].user
	})
	var out []points.LeaderboardEntry
	for i, p := range pairs {
		if i == limit {
			break
		}
		out = append(out, points.LeaderboardEntry{Rank: i + 1, UserID: p.user, TotalPoints: p.score})
	}
	return out, nil
}

func (l *fakeLeaderboard) Rank(ctx context.Context, userID string) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	if _, ok := l.scores[userID]; !ok {
		return 0, notFoundErr("points")
	}
	entries, _ := l.Top(ctx, len(l.scores))
	for _, e := range entries {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return 0, notFoundErr("points")
}

func (l *fakeLeaderboard) Rebuild(_ context.Context, balances []*points.Balance) error {
	l.scores = make(map[string]int)
	for _, b := range balances {
		l.scores[b.UserID] = b.TotalPoints
	}
	return nil
}
