package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/application/command"
	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / RESPONSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

type recordProgressRequest struct {
	TopicID              string `json:"topic_id"`
	CompletionPercentage int    `json:"completion_percentage"`
	TimeSpentSeconds     int    `json:"time_spent_seconds"`
}

type recordResponseRequest struct {
	QuestionID       string `json:"question_id"`
	IsCorrect        bool   `json:"is_correct"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
}

type recordSessionRequest struct {
	SubjectID          string `json:"subject_id"`
	TopicID            string `json:"topic_id"`
	QuestionsAttempted int    `json:"questions_attempted"`
	QuestionsCorrect   int    `json:"questions_correct"`
	DurationSeconds    int    `json:"duration_seconds"`
}

type catalogEntryRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Criteria    map[string]int `json:"criteria"`
}

type progressDTO struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	TopicID              string    `json:"topic_id"`
	CompletionPercentage int       `json:"completion_percentage"`
	TimeSpentSeconds     int       `json:"time_spent_seconds"`
	LastStudied          time.Time `json:"last_studied"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toProgressDTO(p *progress.TopicProgress) progressDTO {
	return progressDTO{
		ID:                   p.ID,
		UserID:               p.UserID.String(),
		TopicID:              p.TopicID.String(),
		CompletionPercentage: p.CompletionPercentage,
		TimeSpentSeconds:     p.TimeSpentSeconds,
		LastStudied:          p.LastStudied,
		UpdatedAt:            p.UpdatedAt,
	}
}

type streakDTO struct {
	Transition    string `json:"transition"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

func toStreakDTO(r *command.TouchStreakResult) *streakDTO {
	if r == nil {
		return nil
	}
	return &streakDTO{
		Transition:    r.Transition.String(),
		CurrentStreak: r.CurrentStreak,
		LongestStreak: r.LongestStreak,
	}
}

type pointsDTO struct {
	Amount   int `json:"amount"`
	NewTotal int `json:"new_total"`
}

func toPointsDTO(r *command.AwardPointsResult) *pointsDTO {
	if r == nil {
		return nil
	}
	return &pointsDTO{Amount: r.Amount, NewTotal: r.NewTotal}
}

type sessionDTO struct {
	ID                 string    `json:"id"`
	SubjectID          string    `json:"subject_id,omitempty"`
	TopicID            string    `json:"topic_id"`
	QuestionsAttempted int       `json:"questions_attempted"`
	QuestionsCorrect   int       `json:"questions_correct"`
	DurationSeconds    int       `json:"duration_seconds"`
	CompletedAt        time.Time `json:"completed_at"`
}

func toSessionDTO(s *progress.PracticeSession) sessionDTO {
	return sessionDTO{
		ID:                 s.ID,
		SubjectID:          s.SubjectID,
		TopicID:            s.TopicID.String(),
		QuestionsAttempted: s.QuestionsAttempted,
		QuestionsCorrect:   s.QuestionsCorrect,
		DurationSeconds:    s.DurationSeconds,
		CompletedAt:        s.CompletedAt,
	}
}

type achievementDTO struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Criteria    map[string]int `json:"criteria"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toAchievementDTO(a *achievement.Achievement) achievementDTO {
	return achievementDTO{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Icon:        a.Icon,
		Criteria:    a.Criteria.ToMap(),
		CreatedAt:   a.CreatedAt,
	}
}

// writeDomainError maps ledger error kinds to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return false
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "prepdeck-backend",
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(r.Context()); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER WRITE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	var req recordProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.RecordProgress.Handle(r.Context(), command.RecordProgressCommand{
		UserID:               r.PathValue("id"),
		TopicID:              req.TopicID,
		CompletionPercentage: req.CompletionPercentage,
		TimeSpentSeconds:     req.TimeSpentSeconds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"progress": toProgressDTO(result.Progress),
		"streak":   toStreakDTO(result.Streak),
		"points":   toPointsDTO(result.Points),
	})
}

func (s *Server) handleRecordResponse(w http.ResponseWriter, r *http.Request) {
	var req recordResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.deps.RecordResponse.Handle(r.Context(), command.RecordResponseCommand{
		UserID:           r.PathValue("id"),
		QuestionID:       req.QuestionID,
		IsCorrect:        req.IsCorrect,
		TimeTakenSeconds: req.TimeTakenSeconds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":          resp.ID,
		"question_id": resp.QuestionID,
		"is_correct":  resp.IsCorrect,
		"answered_at": resp.AnsweredAt,
	})
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	var req recordSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.RecordSession.Handle(r.Context(), command.RecordSessionCommand{
		UserID:             r.PathValue("id"),
		SubjectID:          req.SubjectID,
		TopicID:            req.TopicID,
		QuestionsAttempted: req.QuestionsAttempted,
		QuestionsCorrect:   req.QuestionsCorrect,
		DurationSeconds:    req.DurationSeconds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": toSessionDTO(result.Session),
		"streak":  toStreakDTO(result.Streak),
		"points":  toPointsDTO(result.Points),
	})
}

func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.CheckAchievements.Handle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	unlocked := make([]achievementDTO, 0, len(result.Unlocked))
	for _, a := range result.Unlocked {
		unlocked = append(unlocked, toAchievementDTO(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlocked": unlocked,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.GetProgress.Handle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]progressDTO, 0, len(rows))
	for _, p := range rows {
		dtos = append(dtos, toProgressDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	limit := getQueryParamInt(r, "limit", 0)

	sessions, err := s.deps.GetSessions.Handle(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]sessionDTO, 0, len(sessions))
	for _, sess := range sessions {
		dtos = append(dtos, toSessionDTO(sess))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.deps.GetAnalytics.Handle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGetUserAchievements(w http.ResponseWriter, r *http.Request) {
	details, err := s.deps.GetAchievements.ByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.deps.GetAchievements.Catalog(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]achievementDTO, 0, len(catalog))
	for _, a := range catalog {
		dtos = append(dtos, toAchievementDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := getQueryParamInt(r, "limit", 0)

	entries, err := s.deps.GetLeaderboard.Handle(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetUserRank(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	rank, err := s.deps.GetLeaderboard.RankOf(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"rank":    rank,
		"ranked":  rank > 0,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleCreateAchievement(w http.ResponseWriter, r *http.Request) {
	var req catalogEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := s.deps.ManageCatalog.Create(r.Context(), command.CatalogEntryCommand{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Criteria:    req.Criteria,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAchievementDTO(a))
}

func (s *Server) handleUpdateAchievement(w http.ResponseWriter, r *http.Request) {
	var req catalogEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := s.deps.ManageCatalog.Update(r.Context(), r.PathValue("id"), command.CatalogEntryCommand{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Criteria:    req.Criteria,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAchievementDTO(a))
}

func (s *Server) handleDeleteAchievement(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.ManageCatalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
