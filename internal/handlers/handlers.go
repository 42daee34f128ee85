// Package handlers contains the HTTP endpoints of the API. All responses are
// JSON; failures carry a structured error body, never a redirect flag.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fittracker-api/internal/database"
	"fittracker-api/internal/strava"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("Failed to encode response", "error", err)
	}
}

// writeError writes a structured JSON error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HealthHandler reports service health and upstream rate limit usage
type HealthHandler struct {
	db           *database.DB
	stravaClient *strava.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, stravaClient *strava.Client) *HealthHandler {
	return &HealthHandler{db: db, stravaClient: stravaClient}
}

// HandleHealth handles GET /api/health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(); err != nil {
		writeError(w, http.StatusInternalServerError, "database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"rate_limit": h.stravaClient.GetRateLimitStatus(),
	})
}
