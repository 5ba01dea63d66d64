// Package timeutil provides calendar-day utilities for the progress ledger.
// All streak bookkeeping is keyed by calendar date in UTC: wall-clock dates,
// not elapsed seconds, decide whether a streak continues, so every comparison
// must happen at day granularity in a single timezone.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// Clock supplies the current time. The ledger never reads time.Now directly:
// streak transitions depend on "today", so the clock is injected to make the
// state machine testable with fixed dates.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock pinned to a single instant, for tests.
type FixedClock struct {
	T time.Time
}

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

// StartOfDay returns midnight UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b in UTC.
// Same day returns 0, b on the day after a returns 1, and so on. The result
// is negative when b's day precedes a's.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// FormatDate formats t as an ISO date (YYYY-MM-DD) in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDate parses an ISO date (YYYY-MM-DD) as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
