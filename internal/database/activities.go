package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity represents a denormalized copy of a Strava activity
type Activity struct {
	ID       string
	StravaID int64
	UserID   string

	Name      string
	SportType string

	Distance           *float64
	MovingTime         *int64
	ElapsedTime        *int64
	TotalElevationGain *float64
	AverageSpeed       *float64
	MaxSpeed           *float64
	AverageHeartrate   *float64
	MaxHeartrate       *float64
	AverageWatts       *float64
	Calories           *float64

	StartLat           *float64
	StartLng           *float64
	EndLat             *float64
	EndLng             *float64
	MapPolyline        *string
	MapSummaryPolyline *string

	KudosCount       int64
	CommentCount     int64
	AchievementCount int64

	Description *string
	Weather     *string

	StartDate int64
	CreatedAt int64
}

// HasMap reports whether the activity carries any route polyline
func (a *Activity) HasMap() bool {
	return (a.MapPolyline != nil && *a.MapPolyline != "") ||
		(a.MapSummaryPolyline != nil && *a.MapSummaryPolyline != "")
}

const activityColumns = `id, strava_id, user_id, name, sport_type,
       distance, moving_time, elapsed_time, total_elevation_gain,
       average_speed, max_speed, average_heartrate, max_heartrate,
       average_watts, calories,
       start_lat, start_lng, end_lat, end_lng, map_polyline, map_summary_polyline,
       kudos_count, comment_count, achievement_count,
       description, weather, start_date, created_at`

func scanActivity(row interface{ Scan(...any) error }) (*Activity, error) {
	var a Activity
	err := row.Scan(
		&a.ID, &a.StravaID, &a.UserID, &a.Name, &a.SportType,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &a.TotalElevationGain,
		&a.AverageSpeed, &a.MaxSpeed, &a.AverageHeartrate, &a.MaxHeartrate,
		&a.AverageWatts, &a.Calories,
		&a.StartLat, &a.StartLng, &a.EndLat, &a.EndLng, &a.MapPolyline, &a.MapSummaryPolyline,
		&a.KudosCount, &a.CommentCount, &a.AchievementCount,
		&a.Description, &a.Weather, &a.StartDate, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertActivity inserts or overwrites an activity keyed by
// (strava_id, user_id). The internal id and created_at of an existing row are
// preserved. Returns the stored internal activity id.
func (db *DB) UpsertActivity(a *Activity) (string, error) {
	now := time.Now().Unix()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = now

	_, err := db.conn.Exec(`
		INSERT INTO activities (
			id, strava_id, user_id, name, sport_type,
			distance, moving_time, elapsed_time, total_elevation_gain,
			average_speed, max_speed, average_heartrate, max_heartrate,
			average_watts, calories,
			start_lat, start_lng, end_lat, end_lng, map_polyline, map_summary_polyline,
			kudos_count, comment_count, achievement_count,
			description, weather, start_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(strava_id, user_id) DO UPDATE SET
			name = excluded.name,
			sport_type = excluded.sport_type,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_speed = excluded.average_speed,
			max_speed = excluded.max_speed,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			average_watts = excluded.average_watts,
			calories = excluded.calories,
			start_lat = excluded.start_lat,
			start_lng = excluded.start_lng,
			end_lat = excluded.end_lat,
			end_lng = excluded.end_lng,
			map_polyline = excluded.map_polyline,
			map_summary_polyline = excluded.map_summary_polyline,
			kudos_count = excluded.kudos_count,
			comment_count = excluded.comment_count,
			achievement_count = excluded.achievement_count,
			description = excluded.description,
			weather = excluded.weather,
			start_date = excluded.start_date
	`, a.ID, a.StravaID, a.UserID, a.Name, a.SportType,
		a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain,
		a.AverageSpeed, a.MaxSpeed, a.AverageHeartrate, a.MaxHeartrate,
		a.AverageWatts, a.Calories,
		a.StartLat, a.StartLng, a.EndLat, a.EndLng, a.MapPolyline, a.MapSummaryPolyline,
		a.KudosCount, a.CommentCount, a.AchievementCount,
		a.Description, a.Weather, a.StartDate, a.CreatedAt)

	if err != nil {
		return "", fmt.Errorf("failed to upsert activity: %w", err)
	}

	// The stored id differs from a.ID when the conflict branch ran
	var id string
	err = db.conn.QueryRow(`
		SELECT id FROM activities WHERE strava_id = ? AND user_id = ?
	`, a.StravaID, a.UserID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to resolve activity id: %w", err)
	}
	a.ID = id
	return id, nil
}

// GetActivity retrieves an activity by internal id, scoped to a user.
// Returns nil when not found.
func (db *DB) GetActivity(userID, activityID string) (*Activity, error) {
	a, err := scanActivity(db.conn.QueryRow(`
		SELECT `+activityColumns+` FROM activities WHERE id = ? AND user_id = ?
	`, activityID, userID))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// ListActivities returns a user's activities newest first, with optional pagination
func (db *DB) ListActivities(userID string, offset, limit int) ([]*Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id = ? ORDER BY start_date DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

// ActivityExists reports whether an activity with the given Strava id is
// already stored for the user
func (db *DB) ActivityExists(stravaID int64, userID string) (bool, error) {
	var one int
	err := db.conn.QueryRow(`
		SELECT 1 FROM activities WHERE strava_id = ? AND user_id = ?
	`, stravaID, userID).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check activity existence: %w", err)
	}
	return true, nil
}

// CountActivities returns the number of stored activities for a user
func (db *DB) CountActivities(userID string) (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM activities WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}
