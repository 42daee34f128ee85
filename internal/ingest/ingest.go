// Package ingest pulls activities from Strava and stores a denormalized copy,
// running personal-record and achievement detection for anything new.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fittracker-api/internal/database"
	"fittracker-api/internal/metrics"
	"fittracker-api/internal/stats"
	"fittracker-api/internal/strava"
	"fittracker-api/internal/weather"
)

const (
	// maxSyncPages caps pagination during a sync_all call
	maxSyncPages = 10

	// detailThreshold disables per-activity detail fetches when a page
	// carries more activities than this, to stay inside rate limits
	defaultDetailThreshold = 20

	defaultPerPage = 30
)

// ErrUserNotFound indicates the user is unknown or has no stored credentials
var ErrUserNotFound = errors.New("user not found or not authenticated")

// Service syncs Strava activities into the store
type Service struct {
	db              *database.DB
	stravaClient    *strava.Client
	weatherProvider weather.Provider
	logger          *slog.Logger
	detailThreshold int
}

// NewService creates an ingestion service. weatherProvider may be nil to
// disable weather enrichment entirely.
func NewService(db *database.DB, stravaClient *strava.Client, weatherProvider weather.Provider) *Service {
	return &Service{
		db:              db,
		stravaClient:    stravaClient,
		weatherProvider: weatherProvider,
		logger:          slog.Default(),
		detailThreshold: defaultDetailThreshold,
	}
}

// Result is the outcome of one sync call
type Result struct {
	Activities []*database.Activity
	Count      int
	Pages      int
}

// Sync fetches one page of the user's Strava activities (or up to
// maxSyncPages when syncAll) and upserts them keyed by (strava_id, user_id).
// A 401 from Strava aborts the whole sync with strava.ErrTokenExpired. A
// fetch failure on the first page fails the call; on later pages pagination
// just stops early. When detailed is set and the first page is small enough,
// one extra detail fetch per activity enriches description and calories.
func (s *Service) Sync(ctx context.Context, userID string, page, perPage int, detailed, syncAll bool) (*Result, error) {
	user, err := s.db.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.AccessToken == "" {
		return nil, ErrUserNotFound
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = defaultPerPage
	}

	var raw []strava.SummaryActivity
	pages := 0
	maxPages := 1
	if syncAll {
		maxPages = maxSyncPages
	}

	for i := 0; i < maxPages; i++ {
		batch, err := s.stravaClient.ListActivities(ctx, user.AccessToken, page+i, perPage)
		if err != nil {
			if errors.Is(err, strava.ErrTokenExpired) {
				return nil, err
			}
			if pages == 0 {
				return nil, err
			}
			// Later pages fail soft; keep what we have
			s.logger.Warn("Stopping pagination early", "error", err, "page", page+i)
			break
		}
		if len(batch) == 0 {
			break
		}
		raw = append(raw, batch...)
		pages++
	}

	enrich := detailed && len(raw) < s.detailThreshold

	result := &Result{}
	for _, summary := range raw {
		if enrich {
			detail, err := s.stravaClient.GetActivity(ctx, user.AccessToken, summary.ID)
			if err != nil {
				if errors.Is(err, strava.ErrTokenExpired) {
					return nil, err
				}
				// Enrichment is optional; fall back to the summary
				s.logger.Warn("Detail fetch failed", "activity_id", summary.ID, "error", err)
			} else {
				summary = *detail
			}
		}

		activity := s.mapActivity(ctx, summary, userID)

		isNew, err := s.upsertWithDetection(activity)
		if err != nil {
			return nil, err
		}
		if isNew {
			s.logger.Debug("Stored new activity", "activity_id", activity.ID, "strava_id", activity.StravaID)
		}

		result.Activities = append(result.Activities, activity)
	}

	result.Count = len(result.Activities)
	result.Pages = pages
	metrics.ActivitiesSyncedPerCall.Observe(float64(result.Count))

	s.logger.Info("Sync complete", "user_id", userID, "count", result.Count, "pages", pages)

	return result, nil
}

// upsertWithDetection stores the activity and, when it is new, runs
// personal-record and achievement detection over the stored history.
// Detection is skipped for re-synced activities so records never duplicate.
func (s *Service) upsertWithDetection(activity *database.Activity) (bool, error) {
	exists, err := s.db.ActivityExists(activity.StravaID, activity.UserID)
	if err != nil {
		return false, err
	}

	if _, err := s.db.UpsertActivity(activity); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	history, err := s.db.ListActivities(activity.UserID, 0, 0)
	if err != nil {
		return false, err
	}

	for _, pr := range stats.DetectPersonalRecords(activity, history) {
		record := &database.PersonalRecord{
			UserID:        activity.UserID,
			ActivityID:    activity.ID,
			SportType:     activity.SportType,
			Metric:        pr.Metric,
			Value:         pr.Value,
			PreviousValue: pr.PreviousValue,
			AchievedAt:    activity.StartDate,
		}
		if err := s.db.CreatePersonalRecord(record); err != nil {
			return false, err
		}
		metrics.PersonalRecordsDetectedTotal.Inc()
	}

	for _, ach := range stats.DetectAchievements(activity, history) {
		achievement := &database.Achievement{
			UserID:      activity.UserID,
			ActivityID:  activity.ID,
			Code:        ach.Code,
			Name:        ach.Name,
			Description: ach.Description,
			AchievedAt:  activity.StartDate,
		}
		if err := s.db.CreateAchievement(achievement); err != nil {
			return false, err
		}
		metrics.AchievementsDetectedTotal.Inc()
	}

	return true, nil
}

// mapActivity maps the external Strava shape into the internal document
// shape, defaulting absent strings and substituting now for an unparseable
// start date
func (s *Service) mapActivity(ctx context.Context, summary strava.SummaryActivity, userID string) *database.Activity {
	name := "Unknown Activity"
	if summary.Name != nil && *summary.Name != "" {
		name = *summary.Name
	}

	sport := "Unknown"
	if summary.SportType != nil && *summary.SportType != "" {
		sport = *summary.SportType
	} else if summary.Type != nil && *summary.Type != "" {
		sport = *summary.Type
	}

	startDate := time.Now().Unix()
	if t, err := time.Parse(time.RFC3339, summary.StartDate); err == nil {
		startDate = t.Unix()
	}

	activity := &database.Activity{
		StravaID:           summary.ID,
		UserID:             userID,
		Name:               name,
		SportType:          sport,
		Distance:           summary.Distance,
		MovingTime:         summary.MovingTime,
		ElapsedTime:        summary.ElapsedTime,
		TotalElevationGain: summary.TotalElevationGain,
		AverageSpeed:       summary.AverageSpeed,
		MaxSpeed:           summary.MaxSpeed,
		AverageHeartrate:   summary.AverageHeartrate,
		MaxHeartrate:       summary.MaxHeartrate,
		AverageWatts:       summary.AverageWatts,
		Calories:           summary.Calories,
		KudosCount:         intValue(summary.KudosCount),
		CommentCount:       intValue(summary.CommentCount),
		AchievementCount:   intValue(summary.AchievementCount),
		Description:        summary.Description,
		StartDate:          startDate,
	}

	if len(summary.StartLatLng) == 2 {
		activity.StartLat = &summary.StartLatLng[0]
		activity.StartLng = &summary.StartLatLng[1]
	}
	if len(summary.EndLatLng) == 2 {
		activity.EndLat = &summary.EndLatLng[0]
		activity.EndLng = &summary.EndLatLng[1]
	}
	if summary.Map != nil {
		activity.MapPolyline = summary.Map.Polyline
		activity.MapSummaryPolyline = summary.Map.SummaryPolyline
	}

	// Weather is a best-effort enrichment; a failed lookup omits the field
	if s.weatherProvider != nil && activity.StartLat != nil && activity.StartLng != nil {
		cond, err := s.weatherProvider.Conditions(ctx, *activity.StartLat, *activity.StartLng, startDate)
		if err != nil {
			s.logger.Debug("Weather lookup failed", "strava_id", summary.ID, "error", err)
		} else if cond != "" {
			activity.Weather = &cond
		}
	}

	return activity
}

func intValue(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}
