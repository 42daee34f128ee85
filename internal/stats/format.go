package stats

import (
	"fmt"
	"time"

	"fittracker-api/internal/database"
)

// RecentActivity is one row of the dashboard's recent activities view
type RecentActivity struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SportType      string `json:"sport_type"`
	Distance       string `json:"distance"`
	Time           string `json:"time"`
	Speed          string `json:"speed"`
	Date           string `json:"date"`
	HasMap         bool   `json:"has_map"`
	PersonalRecord bool   `json:"personal_record"`
	Achievement    bool   `json:"achievement"`
}

// FormatDistance converts meters to a km display string
func FormatDistance(meters *float64) string {
	if meters == nil {
		return "0 km"
	}
	return fmt.Sprintf("%.1f km", *meters/1000)
}

// FormatDuration converts seconds to an HH:MM:SS display string
func FormatDuration(seconds *int64) string {
	if seconds == nil {
		return "0:00:00"
	}
	s := *seconds
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// FormatSpeed converts m/s to a km/h display string
func FormatSpeed(mps *float64) string {
	if mps == nil {
		return "0.0 km/h"
	}
	return fmt.Sprintf("%.1f km/h", *mps*3.6)
}

// RecentActivities returns the n most recently started activities formatted
// for display. Stored lists are already ordered newest first. prIDs and
// achIDs flag activities with detected personal records or achievements.
func RecentActivities(activities []*database.Activity, n int, prIDs, achIDs map[string]bool) []RecentActivity {
	recent := make([]RecentActivity, 0, n)
	for _, a := range activities {
		if len(recent) == n {
			break
		}
		recent = append(recent, RecentActivity{
			ID:             a.ID,
			Name:           a.Name,
			SportType:      a.SportType,
			Distance:       FormatDistance(a.Distance),
			Time:           FormatDuration(a.MovingTime),
			Speed:          FormatSpeed(a.AverageSpeed),
			Date:           time.Unix(a.StartDate, 0).UTC().Format("2006-01-02"),
			HasMap:         a.HasMap(),
			PersonalRecord: prIDs[a.ID],
			Achievement:    achIDs[a.ID],
		})
	}
	return recent
}
