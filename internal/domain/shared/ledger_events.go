package shared

// Concrete ledger events. These drive the event-driven achievement check: the
// command handlers publish, the eventhandler package subscribes.

// ProgressRecordedEvent is emitted after a study event is written to the
// progress ledger (and its streak/points side effects have run).
type ProgressRecordedEvent struct {
	BaseEvent
	TopicID              string `json:"topic_id"`
	CompletionPercentage int    `json:"completion_percentage"`
	TimeSpentDelta       int    `json:"time_spent_delta"`
	TopicCompleted       bool   `json:"topic_completed"`
}

// Payload implements Event.
func (e ProgressRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"topic_id":              e.TopicID,
		"completion_percentage": e.CompletionPercentage,
		"time_spent_delta":      e.TimeSpentDelta,
		"topic_completed":       e.TopicCompleted,
	}
}

// NewProgressRecordedEvent creates a ProgressRecordedEvent.
func NewProgressRecordedEvent(userID, topicID string, pct, delta int, completed bool) ProgressRecordedEvent {
	return ProgressRecordedEvent{
		BaseEvent:            NewBaseEvent(EventProgressRecorded, userID),
		TopicID:              topicID,
		CompletionPercentage: pct,
		TimeSpentDelta:       delta,
		TopicCompleted:       completed,
	}
}

// ResponseRecordedEvent is emitted after an answered question is appended.
type ResponseRecordedEvent struct {
	BaseEvent
	QuestionID string `json:"question_id"`
	IsCorrect  bool   `json:"is_correct"`
}

// Payload implements Event.
func (e ResponseRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"question_id": e.QuestionID,
		"is_correct":  e.IsCorrect,
	}
}

// NewResponseRecordedEvent creates a ResponseRecordedEvent.
func NewResponseRecordedEvent(userID, questionID string, isCorrect bool) ResponseRecordedEvent {
	return ResponseRecordedEvent{
		BaseEvent:  NewBaseEvent(EventResponseRecorded, userID),
		QuestionID: questionID,
		IsCorrect:  isCorrect,
	}
}

// SessionRecordedEvent is emitted after a practice session is recorded.
type SessionRecordedEvent struct {
	BaseEvent
	TopicID            string `json:"topic_id"`
	QuestionsAttempted int    `json:"questions_attempted"`
	QuestionsCorrect   int    `json:"questions_correct"`
}

// Payload implements Event.
func (e SessionRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"topic_id":            e.TopicID,
		"questions_attempted": e.QuestionsAttempted,
		"questions_correct":   e.QuestionsCorrect,
	}
}

// NewSessionRecordedEvent creates a SessionRecordedEvent.
func NewSessionRecordedEvent(userID, topicID string, attempted, correct int) SessionRecordedEvent {
	return SessionRecordedEvent{
		BaseEvent:          NewBaseEvent(EventSessionRecorded, userID),
		TopicID:            topicID,
		QuestionsAttempted: attempted,
		QuestionsCorrect:   correct,
	}
}

// StreakChangedEvent is emitted when a touch started, extended, or reset the
// streak. Same-day no-op touches emit nothing.
type StreakChangedEvent struct {
	BaseEvent
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Payload implements Event.
func (e StreakChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"current_streak": e.CurrentStreak,
		"longest_streak": e.LongestStreak,
	}
}

// NewStreakChangedEvent creates a StreakChangedEvent of the given type.
func NewStreakChangedEvent(eventType EventType, userID string, current, longest int) StreakChangedEvent {
	return StreakChangedEvent{
		BaseEvent:     NewBaseEvent(eventType, userID),
		CurrentStreak: current,
		LongestStreak: longest,
	}
}

// PointsAwardedEvent is emitted after a successful award.
type PointsAwardedEvent struct {
	BaseEvent
	Amount   int    `json:"amount"`
	NewTotal int    `json:"new_total"`
	Reason   string `json:"reason"`
}

// Payload implements Event.
func (e PointsAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"amount":    e.Amount,
		"new_total": e.NewTotal,
		"reason":    e.Reason,
	}
}

// NewPointsAwardedEvent creates a PointsAwardedEvent.
func NewPointsAwardedEvent(userID string, amount, newTotal int, reason string) PointsAwardedEvent {
	return PointsAwardedEvent{
		BaseEvent: NewBaseEvent(EventPointsAwarded, userID),
		Amount:    amount,
		NewTotal:  newTotal,
		Reason:    reason,
	}
}

// AchievementUnlockedEvent is emitted once per newly created unlock row.
type AchievementUnlockedEvent struct {
	BaseEvent
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
}

// Payload implements Event.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"achievement_id": e.AchievementID,
		"title":          e.Title,
	}
}

// NewAchievementUnlockedEvent creates an AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID, achievementID, title string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID),
		AchievementID: achievementID,
		Title:         title,
	}
}
