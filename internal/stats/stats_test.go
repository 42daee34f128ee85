package stats

import (
	"math"
	"testing"
	"time"

	"fittracker-api/internal/database"
)

func fp(f float64) *float64 { return &f }
func ip(i int64) *int64     { return &i }

func activityAt(now time.Time, age time.Duration, sport string, distance float64, movingTime int64, avgHR *float64) *database.Activity {
	return &database.Activity{
		ID:               sport + age.String(),
		SportType:        sport,
		Distance:         fp(distance),
		MovingTime:       ip(movingTime),
		AverageHeartrate: avgHR,
		StartDate:        now.Add(-age).Unix(),
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	now := time.Now()
	d := BuildDashboard(nil, now, 0, nil, nil)

	if d.TotalActivities != 0 {
		t.Errorf("Expected 0 activities, got %d", d.TotalActivities)
	}
	if d.TotalDistance != 0 || d.TotalTime != 0 || d.AvgSpeed != 0 {
		t.Errorf("Expected all-zero totals, got %+v", d)
	}
	if d.MaxHeartrate != 0 || d.AvgHeartrate != 0 {
		t.Errorf("Expected zero heart rates, got %+v", d)
	}
	if len(d.MonthlyDistance) != 12 {
		t.Errorf("Expected 12 monthly buckets, got %d", len(d.MonthlyDistance))
	}
	if d.FitnessScore != 0 {
		t.Errorf("Expected fitness score 0, got %f", d.FitnessScore)
	}
	if len(d.RecentActivities) != 0 {
		t.Errorf("Expected no recent activities, got %d", len(d.RecentActivities))
	}
	if (d.HeartrateZones != ZonePercentages{}) {
		t.Errorf("Expected zero zones, got %+v", d.HeartrateZones)
	}
}

func TestBuildDashboardTotals(t *testing.T) {
	now := time.Now()
	activities := []*database.Activity{
		activityAt(now, 24*time.Hour, "Run", 10000, 3600, fp(150)),
		activityAt(now, 48*time.Hour, "Ride", 30000, 3600, nil),
		activityAt(now, 20*24*time.Hour, "Run", 5000, 1800, fp(130)),
	}
	activities[0].TotalElevationGain = fp(120)
	activities[0].MaxHeartrate = fp(180)

	d := BuildDashboard(activities, now, 0, nil, nil)

	if d.TotalActivities != 3 {
		t.Errorf("Expected 3 activities, got %d", d.TotalActivities)
	}
	if d.TotalDistance != 45.0 {
		t.Errorf("Expected total distance 45.0 km, got %f", d.TotalDistance)
	}
	if d.TotalTime != 9000 {
		t.Errorf("Expected total time 9000 s, got %d", d.TotalTime)
	}
	if d.TotalElevationGain != 120 {
		t.Errorf("Expected elevation 120, got %f", d.TotalElevationGain)
	}

	// Only the two recent activities fall inside the trailing week
	if d.ThisWeekActivities != 2 {
		t.Errorf("Expected 2 activities this week, got %d", d.ThisWeekActivities)
	}
	if d.ThisWeekDistance != 40.0 {
		t.Errorf("Expected 40.0 km this week, got %f", d.ThisWeekDistance)
	}

	// 45000 m over 9000 s is 5 m/s, 18 km/h
	if d.AvgSpeed != 18.0 {
		t.Errorf("Expected avg speed 18.0, got %f", d.AvgSpeed)
	}

	// Mean of the two reported averages only
	if d.AvgHeartrate != 140.0 {
		t.Errorf("Expected avg heartrate 140.0, got %f", d.AvgHeartrate)
	}
	if d.MaxHeartrate != 180.0 {
		t.Errorf("Expected max heartrate 180.0, got %f", d.MaxHeartrate)
	}

	if d.SportBreakdown["Run"] != 2 || d.SportBreakdown["Ride"] != 1 {
		t.Errorf("Unexpected sport breakdown: %v", d.SportBreakdown)
	}
}

func TestHeartRateZonesSumTo100(t *testing.T) {
	samples := []float64{100, 115, 130, 135, 145, 155, 165, 175, 185, 190, 195}
	zones := HeartRateZones(samples, 200)

	sum := zones.Zone1 + zones.Zone2 + zones.Zone3 + zones.Zone4 + zones.Zone5
	if math.Abs(sum-100) > 0.1 {
		t.Errorf("Expected zone shares to sum to 100 within 0.1, got %f", sum)
	}
}

func TestHeartRateZonesBoundaries(t *testing.T) {
	// maxHR 200: boundaries at 120/140/160/180
	zones := HeartRateZones([]float64{119, 120, 139, 140, 159, 160, 179, 180}, 200)

	if zones.Zone1 != 12.5 {
		t.Errorf("Expected zone1 12.5, got %f", zones.Zone1)
	}
	if zones.Zone2 != 25.0 {
		t.Errorf("Expected zone2 25.0, got %f", zones.Zone2)
	}
	if zones.Zone3 != 25.0 {
		t.Errorf("Expected zone3 25.0, got %f", zones.Zone3)
	}
	if zones.Zone4 != 25.0 {
		t.Errorf("Expected zone4 25.0, got %f", zones.Zone4)
	}
	if zones.Zone5 != 12.5 {
		t.Errorf("Expected zone5 12.5, got %f", zones.Zone5)
	}
}

func TestHeartRateZonesEmpty(t *testing.T) {
	if z := HeartRateZones(nil, 200); z != (ZonePercentages{}) {
		t.Errorf("Expected zero zones for no samples, got %+v", z)
	}
	if z := HeartRateZones([]float64{150}, 0); z != (ZonePercentages{}) {
		t.Errorf("Expected zero zones for zero maxHR, got %+v", z)
	}
}

func TestFitnessScoreBounds(t *testing.T) {
	now := time.Now()

	if score := FitnessScore(nil, now); score != 0 {
		t.Errorf("Expected score 0 for no activities, got %f", score)
	}

	// Saturate every component
	var activities []*database.Activity
	sports := []string{"Run", "Ride", "Swim", "Hike", "Row"}
	for i := 0; i < 30; i++ {
		a := activityAt(now, time.Duration(i)*12*time.Hour, sports[i%len(sports)], 20000, 3600, fp(170))
		activities = append(activities, a)
	}

	score := FitnessScore(activities, now)
	if score != 100 {
		t.Errorf("Expected saturated score 100, got %f", score)
	}
}

func TestFitnessScoreIgnoresOldActivities(t *testing.T) {
	now := time.Now()
	old := []*database.Activity{
		activityAt(now, 40*24*time.Hour, "Run", 10000, 3600, fp(150)),
	}

	if score := FitnessScore(old, now); score != 0 {
		t.Errorf("Expected score 0 for stale history, got %f", score)
	}
}

func TestMonthlyDistanceBuckets(t *testing.T) {
	now := time.Now()
	activities := []*database.Activity{
		activityAt(now, 24*time.Hour, "Run", 10000, 3600, nil),
		activityAt(now, 45*24*time.Hour, "Run", 20000, 3600, nil),
	}

	buckets := MonthlyDistance(activities, now)
	if len(buckets) != 12 {
		t.Fatalf("Expected 12 buckets, got %d", len(buckets))
	}

	// Newest bucket is last
	if buckets[11].DistanceKm != 10.0 {
		t.Errorf("Expected 10.0 km in the newest bucket, got %f", buckets[11].DistanceKm)
	}
	if buckets[10].DistanceKm != 20.0 {
		t.Errorf("Expected 20.0 km in the previous bucket, got %f", buckets[10].DistanceKm)
	}
	for i := 0; i < 10; i++ {
		if buckets[i].DistanceKm != 0 {
			t.Errorf("Expected empty bucket %d, got %f", i, buckets[i].DistanceKm)
		}
	}
}

func TestHeartRateStats(t *testing.T) {
	activities := []*database.Activity{
		{AverageHeartrate: fp(140), MaxHeartrate: fp(170)},
		{AverageHeartrate: fp(160), MaxHeartrate: fp(190)},
		{}, // no heart-rate data; excluded from the mean
	}

	avg, max := HeartRateStats(activities)
	if avg != 150 {
		t.Errorf("Expected avg 150, got %f", avg)
	}
	if max != 190 {
		t.Errorf("Expected max 190, got %f", max)
	}

	avg, max = HeartRateStats(nil)
	if avg != 0 || max != 0 {
		t.Errorf("Expected zeros for empty input, got %f/%f", avg, max)
	}
}

func TestSportBreakdownUnknown(t *testing.T) {
	breakdown := SportBreakdown([]*database.Activity{
		{SportType: "Run"},
		{SportType: ""},
	})

	if breakdown["Run"] != 1 {
		t.Errorf("Expected 1 Run, got %d", breakdown["Run"])
	}
	if breakdown["Unknown"] != 1 {
		t.Errorf("Expected empty sport counted as Unknown, got %v", breakdown)
	}
}
