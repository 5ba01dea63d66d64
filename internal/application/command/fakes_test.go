package command

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/internal/domain/streak"
)

// In-memory fakes for the domain repository ports. They mirror the store
// contracts the handlers rely on: wrapped ErrNotFound for absent rows and
// wrapped ErrAlreadyExists for unique-constraint violations.

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func notFoundErr(domain string) error {
	return shared.NewDomainError(domain, "Get", shared.ErrNotFound, "row not found")
}

func alreadyExistsErr(domain string) error {
	return shared.NewDomainError(domain, "Create", shared.ErrAlreadyExists, "row already exists")
}

// seqIDs hands out deterministic IDs: id-1, id-2, ...
type seqIDs struct {
	n int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// capturePublisher records every published event.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) ofType(t shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// progress fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeProgressRepo struct {
	rows map[string]*progress.TopicProgress // keyed by user|topic
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*progress.TopicProgress)}
}

func progressKey(userID progress.UserID, topicID progress.TopicID) string {
	return userID.String() + "|" + topicID.String()
}

func (r *fakeProgressRepo) GetByUserAndTopic(_ context.Context, userID progress.UserID, topicID progress.TopicID) (*progress.TopicProgress, error) {
	p, ok := r.rows[progressKey(userID, topicID)]
	if !ok {
		return nil, notFoundErr("progress")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProgressRepo) Create(_ context.Context, p *progress.TopicProgress) error {
	key := progressKey(p.UserID, p.TopicID)
	if _, ok := r.rows[key]; ok {
		return alreadyExistsErr("progress")
	}
	cp := *p
	r.rows[key] = &cp
	return nil
}

func (r *fakeProgressRepo) Update(_ context.Context, p *progress.TopicProgress) error {
	key := progressKey(p.UserID, p.TopicID)
	if _, ok := r.rows[key]; !ok {
		return notFoundErr("progress")
	}
	cp := *p
	r.rows[key] = &cp
	return nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID progress.UserID) ([]*progress.TopicProgress, error) {
	var out []*progress.TopicProgress
	for _, p := range r.rows {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
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

// ─────────────────────────────────────────────────────────────────────────────
// streak fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeStreakRepo struct {
	rows map[string]*streak.Streak

	// createErr, when set, is returned by every Create. Used to simulate a
	// concurrent first touch losing the insert race.
	createErr error
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{rows: make(map[string]*streak.Streak)}
}

func (r *fakeStreakRepo) GetByUser(_ context.Context, userID string) (*streak.Streak, error) {
	s, ok := r.rows[userID]
	if !ok {
		return nil, notFoundErr("streak")
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStreakRepo) Create(_ context.Context, s *streak.Streak) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.rows[s.UserID]; ok {
		return alreadyExistsErr("streak")
	}
	cp := *s
	r.rows[s.UserID] = &cp
	return nil
}

func (r *fakeStreakRepo) Update(_ context.Context, s *streak.Streak) error {
	if _, ok := r.rows[s.UserID]; !ok {
		return notFoundErr("streak")
	}
	cp := *s
	r.rows[s.UserID] = &cp
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// points fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakePointsRepo struct {
	rows map[string]*points.Balance

	createErr error
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{rows: make(map[string]*points.Balance)}
}

func (r *fakePointsRepo) GetByUser(_ context.Context, userID string) (*points.Balance, error) {
	b, ok := r.rows[userID]
	if !ok {
		return nil, notFoundErr("points")
	}
	cp := *b
	return &cp, nil
}

func (r *fakePointsRepo) Create(_ context.Context, b *points.Balance) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.rows[b.UserID]; ok {
		return alreadyExistsErr("points")
	}
	cp := *b
	r.rows[b.UserID] = &cp
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
	var out []*points.Balance
	for _, b := range r.rows {
		cp := *b
		out = append(out, &cp)
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

// ─────────────────────────────────────────────────────────────────────────────
// achievement fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeCatalogRepo struct {
	entries map[string]*achievement.Achievement
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{entries: make(map[string]*achievement.Achievement)}
}

func (r *fakeCatalogRepo) List(_ context.Context) ([]*achievement.Achievement, error) {
	var out []*achievement.Achievement
	for _, a := range r.entries {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *fakeCatalogRepo) GetByID(_ context.Context, id string) (*achievement.Achievement, error) {
	a, ok := r.entries[id]
	if !ok {
		return nil, notFoundErr("achievement")
	}
	cp := *a
	return &cp, nil
}

func (r *fakeCatalogRepo) Create(_ context.Context, a *achievement.Achievement) error {
	if _, ok := r.entries[a.ID]; ok {
		return alreadyExistsErr("achievement")
	}
	cp := *a
	r.entries[a.ID] = &cp
	return nil
}

func (r *fakeCatalogRepo) Update(_ context.Context, a *achievement.Achievement) error {
	if _, ok := r.entries[a.ID]; !ok {
		return notFoundErr("achievement")
	}
	cp := *a
	r.entries[a.ID] = &cp
	return nil
}

func (r *fakeCatalogRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.entries[id]; !ok {
		return notFoundErr("achievement")
	}
	delete(r.entries, id)
	return nil
}

type fakeUnlockRepo struct {
	rows map[string]*achievement.Unlock // keyed by user|achievement

	createErr error
}

func newFakeUnlockRepo() *fakeUnlockRepo {
	return &fakeUnlockRepo{rows: make(map[string]*achievement.Unlock)}
}

func unlockKey(userID, achievementID string) string {
	return userID + "|" + achievementID
}

func (r *fakeUnlockRepo) ListByUser(_ context.Context, userID string) ([]*achievement.Unlock, error) {
	var out []*achievement.Unlock
	for _, u := range r.rows {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUnlockRepo) ListIDsByUser(_ context.Context, userID string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, u := range r.rows {
		if u.UserID == userID {
			out[u.AchievementID] = struct{}{}
		}
	}
	return out, nil
}

func (r *fakeUnlockRepo) Exists(_ context.Context, userID, achievementID string) (bool, error) {
	_, ok := r.rows[unlockKey(userID, achievementID)]
	return ok, nil
}

func (r *fakeUnlockRepo) Create(_ context.Context, u *achievement.Unlock) error {
	if r.createErr != nil {
		return r.createErr
	}
	key := unlockKey(u.UserID, u.AchievementID)
	if _, ok := r.rows[key]; ok {
		return alreadyExistsErr("achievement")
	}
	cp := *u
	r.rows[key] = &cp
	return nil
}

func (r *fakeUnlockRepo) ListDetailsByUser(_ context.Context, userID string) ([]*achievement.UnlockedDetail, error) {
	var out []*achievement.UnlockedDetail
	for _, u := range r.rows {
		if u.UserID == userID {
			out = append(out, &achievement.UnlockedDetail{
				UnlockID:    u.ID,
				Achievement: u.AchievementID,
				UnlockedAt:  u.UnlockedAt,
			})
		}
	}
	return out, nil
}
