package stats

import (
	"fmt"
	"time"

	"fittracker-api/internal/database"
)

const maxInsights = 5

// Insights runs a fixed rule ladder over the trailing 30 days of activity and
// returns at most five templated sentences in priority order. Each rule
// contributes at most one sentence.
func Insights(activities []*database.Activity, now time.Time, prCount int) []string {
	cutoff := now.Add(-scoreWindow).Unix()

	count := 0
	hrSum := 0.0
	hrCount := 0
	sports := make(map[string]bool)
	lastSport := ""
	for _, a := range activities {
		if a.StartDate < cutoff {
			continue
		}
		count++
		sports[a.SportType] = true
		lastSport = a.SportType
		if a.AverageHeartrate != nil {
			hrSum += *a.AverageHeartrate
			hrCount++
		}
	}

	meanHR := 0.0
	if hrCount > 0 {
		meanHR = hrSum / float64(hrCount)
	}

	var insights []string
	add := func(s string) {
		if len(insights) < maxInsights {
			insights = append(insights, s)
		}
	}

	switch {
	case count == 0:
		add("No activities recorded in the last 30 days. Time to lace up!")
	case count >= 20:
		add(fmt.Sprintf("Outstanding consistency: %d activities in the last 30 days.", count))
	case count >= 12:
		add(fmt.Sprintf("Great training rhythm with %d activities this month.", count))
	case count <= 3:
		add(fmt.Sprintf("Only %d activities in the last 30 days. A bit more frequency goes a long way.", count))
	}

	switch {
	case meanHR >= 150:
		add(fmt.Sprintf("Your average heart rate of %.0f bpm points to mostly hard sessions. Mix in some easy days.", meanHR))
	case meanHR > 0 && meanHR < 120:
		add("Plenty of easy aerobic work lately. Consider adding one harder interval session.")
	}

	switch {
	case prCount >= 3:
		add(fmt.Sprintf("You have set %d personal records. The training is paying off.", prCount))
	case prCount == 1:
		add("New personal record on the board. Keep pushing!")
	}

	switch {
	case len(sports) >= 3:
		add(fmt.Sprintf("Nice cross-training: %d different sports this month.", len(sports)))
	case len(sports) == 1 && count >= 8:
		add(fmt.Sprintf("All recent training is %s. Cross-training could help prevent overuse.", lastSport))
	}

	if count >= 1 && count < 20 && meanHR == 0 {
		add("No heart-rate data recorded recently. A monitor would unlock intensity insights.")
	}

	return insights
}
