// Package achievement contains the achievement catalog, the closed set of
// statistics criteria may reference, and the pure unlock checker. This is a
// pure domain layer with zero external dependencies.
package achievement

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Domain errors for the achievement package.
var (
	ErrInvalidID        = errors.New("achievement: invalid achievement ID")
	ErrInvalidUserID    = errors.New("achievement: invalid user ID")
	ErrEmptyTitle       = errors.New("achievement: title cannot be empty")
	ErrEmptyCriteria    = errors.New("achievement: criteria cannot be empty")
	ErrUnknownStat      = errors.New("achievement: unknown statistic in criteria")
	ErrInvalidThreshold = errors.New("achievement: threshold must be positive")
	ErrAlreadyUnlocked  = errors.New("achievement: already unlocked")
)

// StatKind names a statistic an achievement criterion may reference. The set
// is closed: catalog rows carrying any other key are rejected when loaded,
// instead of silently unlocking on a key the stats snapshot never produces.
type StatKind string

const (
	StatTotalResponses   StatKind = "totalResponses"
	StatCorrectResponses StatKind = "correctResponses"
	StatCompletedTopics  StatKind = "completedTopics"
	StatTotalPoints      StatKind = "totalPoints"
	StatCurrentStreak    StatKind = "currentStreak"
)

// knownStats is the closed set of valid criterion keys.
var knownStats = map[StatKind]struct{}{
	StatTotalResponses:   {},
	StatCorrectResponses: {},
	StatCompletedTopics:  {},
	StatTotalPoints:      {},
	StatCurrentStreak:    {},
}

// ParseStatKind validates a raw criterion key against the closed set.
func ParseStatKind(s string) (StatKind, error) {
	k := StatKind(s)
	if _, ok := knownStats[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStat, s)
	}
	return k, nil
}

// Criterion is one minimum-threshold clause of an achievement's criteria.
type Criterion struct {
	Stat      StatKind
	Threshold int
}

// Criteria is the full clause set of an achievement; all clauses are ANDed.
type Criteria []Criterion

// ParseCriteria converts the stored key->threshold mapping into validated
// clauses. Clauses come back sorted by stat name so evaluation and rendering
// are deterministic.
func ParseCriteria(raw map[string]int) (Criteria, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyCriteria
	}

	out := make(Criteria, 0, len(raw))
	for key, threshold := range raw {
		stat, err := ParseStatKind(key)
		if err != nil {
			return nil, err
		}
		if threshold <= 0 {
			return nil, fmt.Errorf("%w: %s=%d", ErrInvalidThreshold, key, threshold)
		}
		out = append(out, Criterion{Stat: stat, Threshold: threshold})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Stat < out[j].Stat })
	return out, nil
}

// ToMap converts criteria back to the stored mapping shape.
func (c Criteria) ToMap() map[string]int {
	out := make(map[string]int, len(c))
	for _, cr := range c {
		out[string(cr.Stat)] = cr.Threshold
	}
	return out
}

// StatsSnapshot is the aggregate user statistics criteria are evaluated
// against. A statistic absent from the snapshot fails its clause - absence
// never passes.
type StatsSnapshot map[StatKind]int

// MetBy reports whether every clause is satisfied by the snapshot.
func (c Criteria) MetBy(stats StatsSnapshot) bool {
	if len(c) == 0 {
		// An empty clause set would unlock for everyone; treat it as unmet.
		return false
	}
	for _, cr := range c {
		value, ok := stats[cr.Stat]
		if !ok || value < cr.Threshold {
			return false
		}
	}
	return true
}

// Achievement is a global catalog entry. Reference data, created and edited by
// administrators, immutable from the runtime unlock flow's point of view.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Criteria    Criteria
	CreatedAt   time.Time
}

// New validates and creates a catalog entry.
func New(id, title, description, icon string, raw map[string]int, now time.Time) (*Achievement, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	criteria, err := ParseCriteria(raw)
	if err != nil {
		return nil, err
	}

	return &Achievement{
		ID:          id,
		Title:       title,
		Description: description,
		Icon:        icon,
		Criteria:    criteria,
		CreatedAt:   now.UTC(),
	}, nil
}

// Unlock is the per-(user, achievement) ledger row, created exactly once when
// the criteria first match.
type Unlock struct {
	ID            string
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
}

// NewUnlock creates an unlock row.
func NewUnlock(id, userID, achievementID string, now time.Time) (*Unlock, error) {
	if id == "" {
		return nil, errors.New("achievement: invalid unlock ID")
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if achievementID == "" {
		return nil, ErrInvalidID
	}
	return &Unlock{
		ID:            id,
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    now.UTC(),
	}, nil
}

// UnlockedDetail is an unlock joined with its catalog entry, for display.
type UnlockedDetail struct {
	UnlockID    string    `json:"unlock_id"`
	Achievement string    `json:"achievement_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// Checker evaluates the catalog against a stats snapshot.
type Checker struct{}

// NewChecker creates an achievement checker.
func NewChecker() *Checker {
	return &Checker{}
}

// NewlyQualified returns catalog entries whose criteria the snapshot meets and
// that are not in the already-unlocked set. Evaluation is pure; persisting the
// unlocks (and re-checking for races) is the caller's job.
func (c *Checker) NewlyQualified(catalog []*Achievement, unlockedIDs map[string]struct{}, stats StatsSnapshot) []*Achievement {
	var qualified []*Achievement
	for _, a := range catalog {
		if _, done := unlockedIDs[a.ID]; done {
			continue
		}
		if a.Criteria.MetBy(stats) {
			qualified = append(qualified, a)
		}
	}
	return qualified
}
