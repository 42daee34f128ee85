package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"fittracker-api/internal/database"
	"fittracker-api/internal/stats"
)

// DashboardHandler serves derived statistics and record listings
type DashboardHandler struct {
	db     *database.DB
	logger *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *database.DB) *DashboardHandler {
	return &DashboardHandler{db: db, logger: slog.Default()}
}

// requireUser resolves the path user or writes a 404
func (h *DashboardHandler) requireUser(w http.ResponseWriter, r *http.Request) (*database.User, bool) {
	userID := r.PathValue("userID")

	user, err := h.db.GetUser(userID)
	if err != nil {
		h.logger.Error("Failed to get user", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return user, true
}

// HandleDashboard handles GET /api/users/{userID}/dashboard. An empty
// activity history returns all-zero stats, not an error.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	activities, err := h.db.ListActivities(user.ID, 0, 0)
	if err != nil {
		h.logger.Error("Failed to list activities", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}

	records, err := h.db.ListPersonalRecords(user.ID)
	if err != nil {
		h.logger.Error("Failed to list personal records", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list personal records")
		return
	}

	achievements, err := h.db.ListAchievements(user.ID)
	if err != nil {
		h.logger.Error("Failed to list achievements", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}

	prIDs := make(map[string]bool, len(records))
	for _, rec := range records {
		prIDs[rec.ActivityID] = true
	}
	achIDs := make(map[string]bool, len(achievements))
	for _, a := range achievements {
		achIDs[a.ActivityID] = true
	}

	dashboard := stats.BuildDashboard(activities, time.Now(), len(records), prIDs, achIDs)

	writeJSON(w, http.StatusOK, dashboard)
}

// personalRecordResponse is the JSON view of a personal record
type personalRecordResponse struct {
	ID            string   `json:"id"`
	ActivityID    string   `json:"activity_id"`
	SportType     string   `json:"sport_type"`
	Metric        string   `json:"metric"`
	Value         float64  `json:"value"`
	PreviousValue *float64 `json:"previous_value"`
	AchievedAt    int64    `json:"achieved_at"`
}

// HandleRecords handles GET /api/users/{userID}/records. No placeholder
// values: a user without records gets an empty list.
func (h *DashboardHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	records, err := h.db.ListPersonalRecords(user.ID)
	if err != nil {
		h.logger.Error("Failed to list personal records", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list personal records")
		return
	}

	out := make([]personalRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, personalRecordResponse{
			ID:            rec.ID,
			ActivityID:    rec.ActivityID,
			SportType:     rec.SportType,
			Metric:        rec.Metric,
			Value:         rec.Value,
			PreviousValue: rec.PreviousValue,
			AchievedAt:    rec.AchievedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"personal_records": out})
}

// achievementResponse is the JSON view of an achievement
type achievementResponse struct {
	ID          string `json:"id"`
	ActivityID  string `json:"activity_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AchievedAt  int64  `json:"achieved_at"`
}

// HandleAchievements handles GET /api/users/{userID}/achievements
func (h *DashboardHandler) HandleAchievements(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	achievements, err := h.db.ListAchievements(user.ID)
	if err != nil {
		h.logger.Error("Failed to list achievements", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}

	out := make([]achievementResponse, 0, len(achievements))
	for _, a := range achievements {
		out = append(out, achievementResponse{
			ID:          a.ID,
			ActivityID:  a.ActivityID,
			Code:        a.Code,
			Name:        a.Name,
			Description: a.Description,
			AchievedAt:  a.AchievedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"achievements": out})
}

// goalResponse is the JSON view of a goal
type goalResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Metric    string  `json:"metric"`
	Target    float64 `json:"target"`
	Progress  float64 `json:"progress"`
	Period    string  `json:"period"`
	CreatedAt int64   `json:"created_at"`
}

// HandleGoals handles GET /api/users/{userID}/goals
func (h *DashboardHandler) HandleGoals(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	goals, err := h.db.ListGoals(user.ID)
	if err != nil {
		h.logger.Error("Failed to list goals", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalResponse{
			ID:        g.ID,
			Name:      g.Name,
			Metric:    g.Metric,
			Target:    g.Target,
			Progress:  g.Progress,
			Period:    g.Period,
			CreatedAt: g.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}
