package stats

import (
	"fmt"
	"sort"
	"time"

	"fittracker-api/internal/database"
)

// Personal record metrics
const (
	MetricDistance      = "distance"
	MetricAverageSpeed  = "average_speed"
	MetricElevationGain = "elevation_gain"
)

// Achievement thresholds
const (
	centuryDistanceM     = 100_000.0
	halfCenturyDistanceM = 50_000.0
	enduranceDurationS   = int64(2 * 60 * 60)
	climbElevationM      = 1000.0
	streakDays           = 7
	streakScanLimit      = 10
)

// PersonalRecordCandidate is a detected same-sport best value
type PersonalRecordCandidate struct {
	Metric        string
	Value         float64
	PreviousValue *float64
}

// AchievementCandidate is a detected achievement rule hit
type AchievementCandidate struct {
	Code        string
	Name        string
	Description string
}

// DetectPersonalRecords compares an activity's distance, average speed and
// elevation gain against the same-sport maximum among the other activities in
// history. The activity itself is excluded from the comparison, so the first
// activity of a sport sets records with no superseded value. Only a strict
// improvement counts.
func DetectPersonalRecords(candidate *database.Activity, history []*database.Activity) []PersonalRecordCandidate {
	var best = map[string]*float64{
		MetricDistance:      nil,
		MetricAverageSpeed:  nil,
		MetricElevationGain: nil,
	}

	for _, a := range history {
		if a.ID == candidate.ID || a.SportType != candidate.SportType {
			continue
		}
		updateBest(best, MetricDistance, a.Distance)
		updateBest(best, MetricAverageSpeed, a.AverageSpeed)
		updateBest(best, MetricElevationGain, a.TotalElevationGain)
	}

	var records []PersonalRecordCandidate
	for _, m := range []struct {
		metric string
		value  *float64
	}{
		{MetricDistance, candidate.Distance},
		{MetricAverageSpeed, candidate.AverageSpeed},
		{MetricElevationGain, candidate.TotalElevationGain},
	} {
		if m.value == nil {
			continue
		}
		prev := best[m.metric]
		if prev == nil || *m.value > *prev {
			records = append(records, PersonalRecordCandidate{
				Metric:        m.metric,
				Value:         *m.value,
				PreviousValue: prev,
			})
		}
	}

	return records
}

func updateBest(best map[string]*float64, metric string, value *float64) {
	if value == nil {
		return
	}
	if best[metric] == nil || *value > *best[metric] {
		v := *value
		best[metric] = &v
	}
}

// DetectAchievements evaluates the achievement rules for an activity against
// the user's history (which includes the activity itself). Several rules may
// fire from one activity; the distance thresholds are mutually exclusive with
// the higher one winning.
func DetectAchievements(candidate *database.Activity, history []*database.Activity) []AchievementCandidate {
	var achievements []AchievementCandidate

	others := 0
	for _, a := range history {
		if a.ID != candidate.ID {
			others++
		}
	}
	if others == 0 {
		achievements = append(achievements, AchievementCandidate{
			Code:        "first_activity",
			Name:        "First Steps",
			Description: "Recorded your first activity",
		})
	}

	if candidate.Distance != nil {
		if *candidate.Distance >= centuryDistanceM {
			achievements = append(achievements, AchievementCandidate{
				Code:        "century",
				Name:        "Century",
				Description: "Covered 100 km in a single activity",
			})
		} else if *candidate.Distance >= halfCenturyDistanceM {
			achievements = append(achievements, AchievementCandidate{
				Code:        "half_century",
				Name:        "Half Century",
				Description: "Covered 50 km in a single activity",
			})
		}
	}

	if candidate.MovingTime != nil && *candidate.MovingTime >= enduranceDurationS {
		achievements = append(achievements, AchievementCandidate{
			Code:        "endurance",
			Name:        "Endurance",
			Description: "Kept moving for over 2 hours",
		})
	}

	if candidate.TotalElevationGain != nil && *candidate.TotalElevationGain >= climbElevationM {
		achievements = append(achievements, AchievementCandidate{
			Code:        "climber",
			Name:        "Climber",
			Description: "Climbed 1000 m in a single activity",
		})
	}

	if streak := ConsecutiveDayStreak(history); streak >= streakDays {
		achievements = append(achievements, AchievementCandidate{
			Code:        "week_streak",
			Name:        "On a Roll",
			Description: fmt.Sprintf("Active %d days in a row", streakDays),
		})
	}

	return achievements
}

// ConsecutiveDayStreak scans the most recent activities' calendar days for a
// run of strictly consecutive days ending at the most recent one. At most the
// ten latest activities are considered.
func ConsecutiveDayStreak(history []*database.Activity) int {
	if len(history) == 0 {
		return 0
	}

	sorted := make([]*database.Activity, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate > sorted[j].StartDate
	})
	if len(sorted) > streakScanLimit {
		sorted = sorted[:streakScanLimit]
	}

	// Collapse to distinct calendar days, newest first
	var days []time.Time
	seen := make(map[string]bool)
	for _, a := range sorted {
		day := time.Unix(a.StartDate, 0).UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			days = append(days, day)
		}
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}
