package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"fittracker-api/internal/database"
	"fittracker-api/internal/ingest"
	"fittracker-api/internal/strava"
)

// ActivitiesHandler handles activity sync, detail, stream and lap endpoints
type ActivitiesHandler struct {
	db           *database.DB
	ingestSvc    *ingest.Service
	stravaClient *strava.Client
	logger       *slog.Logger
}

// NewActivitiesHandler creates a new activities handler
func NewActivitiesHandler(db *database.DB, ingestSvc *ingest.Service, stravaClient *strava.Client) *ActivitiesHandler {
	return &ActivitiesHandler{
		db:           db,
		ingestSvc:    ingestSvc,
		stravaClient: stravaClient,
		logger:       slog.Default(),
	}
}

// activityResponse is the JSON view of a stored activity
type activityResponse struct {
	ID                 string   `json:"id"`
	StravaID           int64    `json:"strava_id"`
	UserID             string   `json:"user_id"`
	Name               string   `json:"name"`
	SportType          string   `json:"sport_type"`
	Distance           *float64 `json:"distance"`
	MovingTime         *int64   `json:"moving_time"`
	ElapsedTime        *int64   `json:"elapsed_time"`
	TotalElevationGain *float64 `json:"total_elevation_gain"`
	AverageSpeed       *float64 `json:"average_speed"`
	MaxSpeed           *float64 `json:"max_speed"`
	AverageHeartrate   *float64 `json:"average_heartrate"`
	MaxHeartrate       *float64 `json:"max_heartrate"`
	AverageWatts       *float64 `json:"average_watts"`
	Calories           *float64 `json:"calories"`
	StartLat           *float64 `json:"start_lat"`
	StartLng           *float64 `json:"start_lng"`
	EndLat             *float64 `json:"end_lat"`
	EndLng             *float64 `json:"end_lng"`
	MapPolyline        *string  `json:"map_polyline"`
	MapSummaryPolyline *string  `json:"map_summary_polyline"`
	HasMap             bool     `json:"has_map"`
	KudosCount         int64    `json:"kudos_count"`
	CommentCount       int64    `json:"comment_count"`
	AchievementCount   int64    `json:"achievement_count"`
	Description        *string  `json:"description"`
	Weather            *string  `json:"weather"`
	StartDate          int64    `json:"start_date"`
	CreatedAt          int64    `json:"created_at"`
}

func toActivityResponse(a *database.Activity) activityResponse {
	return activityResponse{
		ID:                 a.ID,
		StravaID:           a.StravaID,
		UserID:             a.UserID,
		Name:               a.Name,
		SportType:          a.SportType,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		AverageHeartrate:   a.AverageHeartrate,
		MaxHeartrate:       a.MaxHeartrate,
		AverageWatts:       a.AverageWatts,
		Calories:           a.Calories,
		StartLat:           a.StartLat,
		StartLng:           a.StartLng,
		EndLat:             a.EndLat,
		EndLng:             a.EndLng,
		MapPolyline:        a.MapPolyline,
		MapSummaryPolyline: a.MapSummaryPolyline,
		HasMap:             a.HasMap(),
		KudosCount:         a.KudosCount,
		CommentCount:       a.CommentCount,
		AchievementCount:   a.AchievementCount,
		Description:        a.Description,
		Weather:            a.Weather,
		StartDate:          a.StartDate,
		CreatedAt:          a.CreatedAt,
	}
}

// HandleSync handles GET /api/users/{userID}/activities. It syncs from Strava
// and returns the upserted activities.
// Query parameters:
//   - page, per_page: pagination forwarded to Strava (defaults 1, 30)
//   - detailed: issue one extra detail fetch per activity when the volume allows
//   - sync_all: paginate until an empty page, up to a fixed maximum
func (h *ActivitiesHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	query := r.URL.Query()

	page := 1
	if pageStr := query.Get("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			writeError(w, http.StatusBadRequest, "invalid page parameter")
			return
		}
		page = p
	}

	perPage := 30
	if perPageStr := query.Get("per_page"); perPageStr != "" {
		pp, err := strconv.Atoi(perPageStr)
		if err != nil || pp < 1 || pp > 200 {
			writeError(w, http.StatusBadRequest, "per_page must be between 1 and 200")
			return
		}
		perPage = pp
	}

	detailed := query.Get("detailed") == "true"
	syncAll := query.Get("sync_all") == "true"

	result, err := h.ingestSvc.Sync(r.Context(), userID, page, perPage, detailed, syncAll)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found or not authenticated")
		case errors.Is(err, strava.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "Strava token expired")
		default:
			h.logger.Error("Sync failed", "user_id", userID, "error", err)
			writeError(w, http.StatusBadRequest, "failed to fetch activities from Strava")
		}
		return
	}

	activities := make([]activityResponse, 0, len(result.Activities))
	for _, a := range result.Activities {
		activities = append(activities, toActivityResponse(a))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"count":      result.Count,
		"pages":      result.Pages,
	})
}

// HandleGetActivity handles GET /api/users/{userID}/activities/{activityID}
// from the stored copy
func (h *ActivitiesHandler) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	activityID := r.PathValue("activityID")

	activity, err := h.db.GetActivity(userID, activityID)
	if err != nil {
		h.logger.Error("Failed to get activity", "activity_id", activityID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get activity")
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "activity not found")
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponse(activity))
}

// lookupStored resolves the user and stored activity for the proxy endpoints
func (h *ActivitiesHandler) lookupStored(w http.ResponseWriter, r *http.Request) (*database.User, *database.Activity, bool) {
	userID := r.PathValue("userID")
	activityID := r.PathValue("activityID")

	user, err := h.db.GetUser(userID)
	if err != nil {
		h.logger.Error("Failed to get user", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return nil, nil, false
	}
	if user == nil || user.AccessToken == "" {
		writeError(w, http.StatusNotFound, "user not found or not authenticated")
		return nil, nil, false
	}

	activity, err := h.db.GetActivity(userID, activityID)
	if err != nil {
		h.logger.Error("Failed to get activity", "activity_id", activityID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get activity")
		return nil, nil, false
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "activity not found")
		return nil, nil, false
	}

	return user, activity, true
}

// HandleStreams handles GET /api/users/{userID}/activities/{activityID}/streams,
// proxying the Strava streams endpoint for the stored activity
func (h *ActivitiesHandler) HandleStreams(w http.ResponseWriter, r *http.Request) {
	user, activity, ok := h.lookupStored(w, r)
	if !ok {
		return
	}

	keys := []string{"time", "distance", "heartrate", "altitude", "velocity_smooth"}
	streams, err := h.stravaClient.GetActivityStreams(r.Context(), user.AccessToken, activity.StravaID, keys)
	if err != nil {
		if errors.Is(err, strava.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Strava token expired")
			return
		}
		h.logger.Error("Failed to fetch streams", "strava_id", activity.StravaID, "error", err)
		writeError(w, http.StatusBadRequest, "failed to fetch streams from Strava")
		return
	}

	writeJSON(w, http.StatusOK, streams)
}

// HandleLaps handles GET /api/users/{userID}/activities/{activityID}/laps,
// proxying the Strava laps endpoint for the stored activity
func (h *ActivitiesHandler) HandleLaps(w http.ResponseWriter, r *http.Request) {
	user, activity, ok := h.lookupStored(w, r)
	if !ok {
		return
	}

	laps, err := h.stravaClient.GetActivityLaps(r.Context(), user.AccessToken, activity.StravaID)
	if err != nil {
		if errors.Is(err, strava.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Strava token expired")
			return
		}
		h.logger.Error("Failed to fetch laps", "strava_id", activity.StravaID, "error", err)
		writeError(w, http.StatusBadRequest, "failed to fetch laps from Strava")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"laps": laps})
}
