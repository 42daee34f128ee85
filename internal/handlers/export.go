package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fittracker-api/internal/database"
	"fittracker-api/internal/export"
)

// ExportHandler serves activity data downloads
type ExportHandler struct {
	db     *database.DB
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(db *database.DB) *ExportHandler {
	return &ExportHandler{db: db, logger: slog.Default()}
}

// HandleExport handles GET /api/users/{userID}/export?format=csv. Only CSV is
// supported; any other format is a 400 with nothing emitted.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}

	user, err := h.db.GetUser(userID)
	if err != nil {
		h.logger.Error("Failed to get user", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	activities, err := h.db.ListActivities(userID, 0, 0)
	if err != nil {
		h.logger.Error("Failed to list activities", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}

	data, filename, err := export.Activities(activities, userID, format, time.Now())
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "unsupported export format: "+format)
			return
		}
		h.logger.Error("Export failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	h.logger.Info("Exported activities", "user_id", userID, "count", len(activities), "filename", filename)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
