package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, time.March, 10, 18, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestStartOfDay_ConvertsToUTC(t *testing.T) {
	// 23:30 UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	in := time.Date(2025, time.March, 10, 23, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, time.March, 11, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(a, b), "one minute across midnight is a full calendar day")
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, -1, DaysBetween(b, a))
}

func TestDaysBetween_YearBoundary(t *testing.T) {
	a := time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(a, b))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, time.March, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, time.March, 10, 23, 59, 59, 0, time.UTC)
	c := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestFormatAndParseDate(t *testing.T) {
	in := time.Date(2025, time.March, 10, 18, 45, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", FormatDate(in))

	parsed, err := ParseDate("2025-03-10")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDate("10/03/2025")
	assert.Error(t, err)
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	var clock Clock = FixedClock{T: instant}

	assert.Equal(t, instant, clock.Now())
}
