package handlers

import (
	"log/slog"
	"net/http"

	"fittracker-api/internal/database"
)

// UsersHandler handles user profile endpoints
type UsersHandler struct {
	db     *database.DB
	logger *slog.Logger
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(db *database.DB) *UsersHandler {
	return &UsersHandler{db: db, logger: slog.Default()}
}

// userResponse is the user view with the token pair stripped
type userResponse struct {
	ID             string  `json:"id"`
	StravaID       int64   `json:"strava_id"`
	Firstname      *string `json:"firstname"`
	Lastname       *string `json:"lastname"`
	Email          *string `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
	City           *string `json:"city"`
	Country        *string `json:"country"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}

func toUserResponse(u *database.User) userResponse {
	return userResponse{
		ID:             u.ID,
		StravaID:       u.StravaID,
		Firstname:      u.Firstname,
		Lastname:       u.Lastname,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		City:           u.City,
		Country:        u.Country,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// HandleGetUser handles GET /api/users/{userID}
func (h *UsersHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

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

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDeleteUser handles DELETE /api/users/{userID}. Activities, records,
// achievements and goals are removed with the user.
func (h *UsersHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	deleted, err := h.db.DeleteUser(userID)
	if err != nil {
		h.logger.Error("Failed to delete user", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	h.logger.Info("Deleted user and all dependent data", "user_id", userID)

	writeJSON(w, http.StatusOK, map[string]string{"message": "user and all data deleted"})
}
