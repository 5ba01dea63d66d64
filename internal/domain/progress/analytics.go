package progress

// AnalyticsSnapshot is a point-in-time aggregate computed by reading and
// reducing stored rows; it is never persisted itself. Every field defaults to
// zero for a user with no rows anywhere - absence of data is a valid state,
// not an error.
type AnalyticsSnapshot struct {
	TotalResponses        int     `json:"total_responses"`
	CorrectResponses      int     `json:"correct_responses"`
	AverageTimeSeconds    float64 `json:"average_time_seconds"`
	TotalStudyTimeSeconds int     `json:"total_study_time_seconds"`
	CompletedTopics       int     `json:"completed_topics"`
	StreakDays            int     `json:"streak_days"`
	LongestStreak         int     `json:"longest_streak"`
	TotalPoints           int     `json:"total_points"`
}

// Accuracy returns the correct-response ratio in [0,1], 0 when no responses.
func (s AnalyticsSnapshot) Accuracy() float64 {
	if s.TotalResponses == 0 {
		return 0
	}
	return float64(s.CorrectResponses) / float64(s.TotalResponses)
}

// BuildAnalytics reduces raw rows into a snapshot. Streak and points values
// come in pre-resolved (zero when the user has no row yet).
func BuildAnalytics(responses []*Response, rows []*TopicProgress, streakDays, longestStreak, totalPoints int) AnalyticsSnapshot {
	snap := AnalyticsSnapshot{
		StreakDays:    streakDays,
		LongestStreak: longestStreak,
		TotalPoints:   totalPoints,
	}

	totalTaken := 0
	for _, r := range responses {
		snap.TotalResponses++
		if r.IsCorrect {
			snap.CorrectResponses++
		}
		totalTaken += r.TimeTakenSeconds
	}
	if snap.TotalResponses > 0 {
		snap.AverageTimeSeconds = float64(totalTaken) / float64(snap.TotalResponses)
	}

	for _, p := range rows {
		snap.TotalStudyTimeSeconds += p.TimeSpentSeconds
		if p.IsCompleted() {
			snap.CompletedTopics++
		}
	}

	return snap
}
