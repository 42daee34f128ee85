package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SummaryActivity is the summary shape returned by the athlete activities
// list endpoint. Pointer fields are omitted by Strava when the recording
// device did not capture them.
type SummaryActivity struct {
	ID                 int64    `json:"id"`
	Name               *string  `json:"name"`
	SportType          *string  `json:"sport_type"`
	Type               *string  `json:"type"`
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
	StartLatLng        []float64 `json:"start_latlng"`
	EndLatLng          []float64 `json:"end_latlng"`
	Map                *Map      `json:"map"`
	KudosCount         *int64   `json:"kudos_count"`
	CommentCount       *int64   `json:"comment_count"`
	AchievementCount   *int64   `json:"achievement_count"`
	Description        *string  `json:"description"`
	StartDate          string   `json:"start_date"`
}

// Map holds the encoded route polylines of an activity
type Map struct {
	ID              string  `json:"id"`
	Polyline        *string `json:"polyline"`
	SummaryPolyline *string `json:"summary_polyline"`
}

// Lap is one lap of a detailed activity
type Lap struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	LapIndex         int      `json:"lap_index"`
	Distance         *float64 `json:"distance"`
	MovingTime       *int64   `json:"moving_time"`
	ElapsedTime      *int64   `json:"elapsed_time"`
	AverageSpeed     *float64 `json:"average_speed"`
	MaxSpeed         *float64 `json:"max_speed"`
	AverageHeartrate *float64 `json:"average_heartrate"`
	MaxHeartrate     *float64 `json:"max_heartrate"`
	StartDate        string   `json:"start_date"`
}

// StreamSet is the keyed stream response for an activity
type StreamSet map[string]Stream

// Stream is one data series of an activity stream set
type Stream struct {
	Data         []float64 `json:"data"`
	SeriesType   string    `json:"series_type"`
	OriginalSize int       `json:"original_size"`
	Resolution   string    `json:"resolution"`
}

// ListActivities fetches one page of the athlete's activities
func (c *Client) ListActivities(ctx context.Context, accessToken string, page, perPage int) ([]SummaryActivity, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 30
	}

	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}

	body, err := c.get(ctx, "list_activities", "/athlete/activities?"+params.Encode(), accessToken)
	if err != nil {
		return nil, err
	}

	var activities []SummaryActivity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
	}

	return activities, nil
}

// GetActivity fetches the detailed representation of a single activity
func (c *Client) GetActivity(ctx context.Context, accessToken string, activityID int64) (*SummaryActivity, error) {
	body, err := c.get(ctx, "get_activity", fmt.Sprintf("/activities/%d", activityID), accessToken)
	if err != nil {
		return nil, err
	}

	var activity SummaryActivity
	if err := json.Unmarshal(body, &activity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity %d: %w", activityID, err)
	}

	return &activity, nil
}

// GetActivityStreams fetches the requested stream keys for an activity
func (c *Client) GetActivityStreams(ctx context.Context, accessToken string, activityID int64, keys []string) (StreamSet, error) {
	params := url.Values{
		"keys":        {strings.Join(keys, ",")},
		"key_by_type": {"true"},
	}

	path := fmt.Sprintf("/activities/%d/streams?%s", activityID, params.Encode())
	body, err := c.get(ctx, "get_activity_streams", path, accessToken)
	if err != nil {
		return nil, err
	}

	var streams StreamSet
	if err := json.Unmarshal(body, &streams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal streams for activity %d: %w", activityID, err)
	}

	return streams, nil
}

// GetActivityLaps fetches the laps of an activity
func (c *Client) GetActivityLaps(ctx context.Context, accessToken string, activityID int64) ([]Lap, error) {
	body, err := c.get(ctx, "get_activity_laps", fmt.Sprintf("/activities/%d/laps", activityID), accessToken)
	if err != nil {
		return nil, err
	}

	var laps []Lap
	if err := json.Unmarshal(body, &laps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal laps for activity %d: %w", activityID, err)
	}

	return laps, nil
}
