package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestParseCriteria(t *testing.T) {
	criteria, err := ParseCriteria(map[string]int{
		"totalPoints":    100,
		"currentStreak":  7,
		"totalResponses": 50,
	})
	assert.NoError(t, err)
	assert.Len(t, criteria, 3)

	// Sorted by stat name, so evaluation order is deterministic.
	assert.Equal(t, StatCompletedTopics, StatKind("completedTopics"))
	assert.Equal(t, StatCurrentStreak, criteria[0].Stat)
	assert.Equal(t, StatTotalPoints, criteria[1].Stat)
	assert.Equal(t, StatTotalResponses, criteria[2].Stat)
}

func TestParseCriteria_Empty(t *testing.T) {
	_, err := ParseCriteria(map[string]int{})
	assert.ErrorIs(t, err, ErrEmptyCriteria)

	_, err = ParseCriteria(nil)
	assert.ErrorIs(t, err, ErrEmptyCriteria)
}

func TestParseCriteria_UnknownStat(t *testing.T) {
	_, err := ParseCriteria(map[string]int{"karmaPoints": 10})
	assert.ErrorIs(t, err, ErrUnknownStat)
}

func TestParseCriteria_NonPositiveThreshold(t *testing.T) {
	_, err := ParseCriteria(map[string]int{"totalPoints": 0})
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = ParseCriteria(map[string]int{"totalPoints": -5})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestCriteria_MetBy_AllClausesRequired(t *testing.T) {
	criteria, _ := ParseCriteria(map[string]int{
		"totalResponses": 10,
		"currentStreak":  3,
	})

	assert.True(t, criteria.MetBy(StatsSnapshot{
		StatTotalResponses: 10,
		StatCurrentStreak:  3,
	}))
	assert.False(t, criteria.MetBy(StatsSnapshot{
		StatTotalResponses: 100,
		StatCurrentStreak:  2,
	}), "one clause below threshold fails the whole set")
}

func TestCriteria_MetBy_MissingStatFails(t *testing.T) {
	criteria, _ := ParseCriteria(map[string]int{"completedTopics": 1})

	assert.False(t, criteria.MetBy(StatsSnapshot{StatTotalPoints: 9999}))
	assert.False(t, criteria.MetBy(StatsSnapshot{}))
}

func TestCriteria_MetBy_EmptyNeverUnlocks(t *testing.T) {
	var criteria Criteria
	assert.False(t, criteria.MetBy(StatsSnapshot{StatTotalPoints: 1}))
}

func TestCriteria_ToMapRoundTrip(t *testing.T) {
	raw := map[string]int{"totalPoints": 500, "correctResponses": 25}
	criteria, err := ParseCriteria(raw)
	assert.NoError(t, err)
	assert.Equal(t, raw, criteria.ToMap())
}

func TestNew(t *testing.T) {
	a, err := New("ach-1", "First Steps", "Answer your first question", "star",
		map[string]int{"totalResponses": 1}, now)
	assert.NoError(t, err)
	assert.Equal(t, "ach-1", a.ID)
	assert.Equal(t, "First Steps", a.Title)
	assert.Len(t, a.Criteria, 1)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("", "Title", "", "", map[string]int{"totalResponses": 1}, now)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = New("ach-1", "", "", "", map[string]int{"totalResponses": 1}, now)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = New("ach-1", "Title", "", "", nil, now)
	assert.ErrorIs(t, err, ErrEmptyCriteria)
}

func TestNewUnlock_Invalid(t *testing.T) {
	_, err := NewUnlock("unl-1", "", "ach-1", now)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = NewUnlock("unl-1", "user-1", "", now)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestChecker_NewlyQualified(t *testing.T) {
	first, _ := New("ach-first", "First Steps", "", "", map[string]int{"totalResponses": 1}, now)
	ten, _ := New("ach-ten", "Getting Serious", "", "", map[string]int{"totalResponses": 10}, now)
	week, _ := New("ach-week", "Week Warrior", "", "", map[string]int{"currentStreak": 7}, now)
	catalog := []*Achievement{first, ten, week}

	checker := NewChecker()
	stats := StatsSnapshot{
		StatTotalResponses: 12,
		StatCurrentStreak:  3,
	}

	qualified := checker.NewlyQualified(catalog, map[string]struct{}{}, stats)
	assert.Len(t, qualified, 2)
	assert.Equal(t, "ach-first", qualified[0].ID)
	assert.Equal(t, "ach-ten", qualified[1].ID)
}

func TestChecker_NewlyQualified_SkipsUnlocked(t *testing.T) {
	first, _ := New("ach-first", "First Steps", "", "", map[string]int{"totalResponses": 1}, now)
	ten, _ := New("ach-ten", "Getting Serious", "", "", map[string]int{"totalResponses": 10}, now)
	catalog := []*Achievement{first, ten}

	unlocked := map[string]struct{}{"ach-first": {}}
	qualified := NewChecker().NewlyQualified(catalog, unlocked, StatsSnapshot{StatTotalResponses: 12})

	assert.Len(t, qualified, 1)
	assert.Equal(t, "ach-ten", qualified[0].ID)
}

func TestChecker_NewlyQualified_NothingMet(t *testing.T) {
	week, _ := New("ach-week", "Week Warrior", "", "", map[string]int{"currentStreak": 7}, now)

	qualified := NewChecker().NewlyQualified([]*Achievement{week}, nil, StatsSnapshot{StatCurrentStreak: 6})
	assert.Empty(t, qualified)
}
