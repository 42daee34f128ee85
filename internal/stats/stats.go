// Package stats computes derived statistics over a user's stored activities.
// Everything here is a pure function of its inputs; persistence and upstream
// fetching live elsewhere.
package stats

import (
	"math"
	"time"

	"fittracker-api/internal/database"
)

// Fitness score component caps. The score is the sum of four bounded
// components, so it can never exceed 100 or go negative.
const (
	FrequencyCap       = 40.0
	IntensityCap       = 30.0
	VarietyCap         = 20.0
	DistanceCap        = 10.0
	PointsPerActivity  = 2.0
	PointsPerSport     = 5.0
	IntensityCeilingHR = 160.0
	DistanceReferenceKm = 100.0
)

// DefaultMaxHeartRate is assumed when no stored activity reports a maximum
const DefaultMaxHeartRate = 200.0

const scoreWindow = 30 * 24 * time.Hour

// Dashboard is the aggregate view served to the dashboard endpoint
type Dashboard struct {
	TotalActivities    int                `json:"total_activities"`
	TotalDistance      float64            `json:"total_distance"`
	TotalTime          int64              `json:"total_time"`
	TotalElevationGain float64            `json:"total_elevation_gain"`
	ThisWeekActivities int                `json:"this_week_activities"`
	ThisWeekDistance   float64            `json:"this_week_distance"`
	AvgSpeed           float64            `json:"avg_speed"`
	AvgHeartrate       float64            `json:"avg_heartrate"`
	MaxHeartrate       float64            `json:"max_heartrate"`
	MonthlyDistance    []MonthBucket      `json:"monthly_distance"`
	SportBreakdown     map[string]int     `json:"sport_breakdown"`
	HeartrateZones     ZonePercentages    `json:"heartrate_zones"`
	FitnessScore       float64            `json:"fitness_score"`
	Insights           []string           `json:"ai_insights"`
	RecentActivities   []RecentActivity   `json:"recent_activities"`
}

// MonthBucket is the distance summed over one 30-day window
type MonthBucket struct {
	Label      string  `json:"label"`
	DistanceKm float64 `json:"distance_km"`
}

// ZonePercentages is the share of heart-rate samples per training zone
type ZonePercentages struct {
	Zone1 float64 `json:"zone1"`
	Zone2 float64 `json:"zone2"`
	Zone3 float64 `json:"zone3"`
	Zone4 float64 `json:"zone4"`
	Zone5 float64 `json:"zone5"`
}

// BuildDashboard assembles the full dashboard from a user's stored history.
// prIDs and achIDs mark activities with detected records/achievements, and
// prCount feeds the insight rules. An empty history yields all-zero stats.
func BuildDashboard(activities []*database.Activity, now time.Time, prCount int, prIDs, achIDs map[string]bool) *Dashboard {
	totalDistance := 0.0
	totalElevation := 0.0
	var totalTime int64
	for _, a := range activities {
		totalDistance += floatOrZero(a.Distance)
		totalElevation += floatOrZero(a.TotalElevationGain)
		totalTime += intOrZero(a.MovingTime)
	}

	week := ThisWeek(activities, now)
	weekDistance := 0.0
	for _, a := range week {
		weekDistance += floatOrZero(a.Distance)
	}

	// Overall average speed from totals, not a mean of per-activity averages
	avgSpeed := 0.0
	if totalTime > 0 {
		avgSpeed = totalDistance / float64(totalTime)
	}

	avgHR, maxHR := HeartRateStats(activities)

	zoneMax := maxHR
	if zoneMax <= 0 {
		zoneMax = DefaultMaxHeartRate
	}
	var samples []float64
	for _, a := range activities {
		if a.AverageHeartrate != nil {
			samples = append(samples, *a.AverageHeartrate)
		}
	}

	return &Dashboard{
		TotalActivities:    len(activities),
		TotalDistance:      round1(totalDistance / 1000),
		TotalTime:          totalTime,
		TotalElevationGain: round1(totalElevation),
		ThisWeekActivities: len(week),
		ThisWeekDistance:   round1(weekDistance / 1000),
		AvgSpeed:           round1(avgSpeed * 3.6),
		AvgHeartrate:       round1(avgHR),
		MaxHeartrate:       maxHR,
		MonthlyDistance:    MonthlyDistance(activities, now),
		SportBreakdown:     SportBreakdown(activities),
		HeartrateZones:     HeartRateZones(samples, zoneMax),
		FitnessScore:       FitnessScore(activities, now),
		Insights:           Insights(activities, now, prCount),
		RecentActivities:   RecentActivities(activities, 5, prIDs, achIDs),
	}
}

// ThisWeek returns the activities started within the trailing seven days
func ThisWeek(activities []*database.Activity, now time.Time) []*database.Activity {
	cutoff := now.Add(-7 * 24 * time.Hour).Unix()
	var week []*database.Activity
	for _, a := range activities {
		if a.StartDate >= cutoff {
			week = append(week, a)
		}
	}
	return week
}

// MonthlyDistance sums distance over twelve fixed 30-day windows walked back
// from now, reported oldest to newest. These are rolling windows, not
// calendar months.
func MonthlyDistance(activities []*database.Activity, now time.Time) []MonthBucket {
	const windows = 12
	const windowLen = 30 * 24 * time.Hour

	buckets := make([]MonthBucket, windows)
	for i := 0; i < windows; i++ {
		// i=0 is the oldest window
		end := now.Add(-time.Duration(windows-1-i) * windowLen)
		start := end.Add(-windowLen)

		sum := 0.0
		for _, a := range activities {
			if a.StartDate > start.Unix() && a.StartDate <= end.Unix() {
				sum += floatOrZero(a.Distance)
			}
		}

		buckets[i] = MonthBucket{
			Label:      start.Format("Jan 2"),
			DistanceKm: round1(sum / 1000),
		}
	}
	return buckets
}

// HeartRateStats returns the mean of average heart rates across activities
// that report one, and the maximum of max heart rates (0 when none do)
func HeartRateStats(activities []*database.Activity) (avg, max float64) {
	sum := 0.0
	count := 0
	for _, a := range activities {
		if a.AverageHeartrate != nil {
			sum += *a.AverageHeartrate
			count++
		}
		if a.MaxHeartrate != nil && *a.MaxHeartrate > max {
			max = *a.MaxHeartrate
		}
	}
	if count > 0 {
		avg = sum / float64(count)
	}
	return avg, max
}

// SportBreakdown counts activities per sport type string
func SportBreakdown(activities []*database.Activity) map[string]int {
	breakdown := make(map[string]int)
	for _, a := range activities {
		sport := a.SportType
		if sport == "" {
			sport = "Unknown"
		}
		breakdown[sport]++
	}
	return breakdown
}

// HeartRateZones classifies heart-rate samples into five zones at 60/70/80/90
// percent of maxHR and reports each zone's share of the total. All zones are
// zero when there are no samples. Per-zone rounding is independent, so the
// shares sum to 100 only within 0.1 tolerance.
func HeartRateZones(samples []float64, maxHR float64) ZonePercentages {
	if len(samples) == 0 || maxHR <= 0 {
		return ZonePercentages{}
	}

	var counts [5]int
	for _, hr := range samples {
		switch {
		case hr < 0.6*maxHR:
			counts[0]++
		case hr < 0.7*maxHR:
			counts[1]++
		case hr < 0.8*maxHR:
			counts[2]++
		case hr < 0.9*maxHR:
			counts[3]++
		default:
			counts[4]++
		}
	}

	total := float64(len(samples))
	return ZonePercentages{
		Zone1: round1(float64(counts[0]) / total * 100),
		Zone2: round1(float64(counts[1]) / total * 100),
		Zone3: round1(float64(counts[2]) / total * 100),
		Zone4: round1(float64(counts[3]) / total * 100),
		Zone5: round1(float64(counts[4]) / total * 100),
	}
}

// FitnessScore is a bounded weighted sum over the trailing 30 days:
// frequency, intensity, variety and distance components, each capped.
func FitnessScore(activities []*database.Activity, now time.Time) float64 {
	cutoff := now.Add(-scoreWindow).Unix()

	count := 0
	hrSum := 0.0
	hrCount := 0
	distance := 0.0
	sports := make(map[string]bool)

	for _, a := range activities {
		if a.StartDate < cutoff {
			continue
		}
		count++
		distance += floatOrZero(a.Distance)
		sports[a.SportType] = true
		if a.AverageHeartrate != nil {
			hrSum += *a.AverageHeartrate
			hrCount++
		}
	}

	frequency := math.Min(float64(count)*PointsPerActivity, FrequencyCap)

	intensity := 0.0
	if hrCount > 0 {
		meanHR := hrSum / float64(hrCount)
		intensity = math.Min(meanHR/IntensityCeilingHR*IntensityCap, IntensityCap)
	}

	variety := math.Min(float64(len(sports))*PointsPerSport, VarietyCap)

	dist := math.Min(distance/1000/DistanceReferenceKm*DistanceCap, DistanceCap)

	return round1(frequency + intensity + variety + dist)
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func intOrZero(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
