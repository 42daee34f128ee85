package strava

import (
	"testing"
)

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter()
	status := rl.Status()

	if status.Limit15Min != 200 {
		t.Errorf("Expected default 15min limit 200, got %d", status.Limit15Min)
	}
	if status.LimitDaily != 2000 {
		t.Errorf("Expected default daily limit 2000, got %d", status.LimitDaily)
	}
	if status.Usage15MinPct != 0 {
		t.Errorf("Expected 0%% usage, got %f", status.Usage15MinPct)
	}
}

func TestRateLimiterUpdate(t *testing.T) {
	rl := NewRateLimiter()
	rl.Update(200, 50, 2000, 500)

	status := rl.Status()
	if status.Usage15Min != 50 {
		t.Errorf("Expected 15min usage 50, got %d", status.Usage15Min)
	}
	if status.Usage15MinPct != 25 {
		t.Errorf("Expected 15min usage 25%%, got %f", status.Usage15MinPct)
	}
	if status.UsageDailyPct != 25 {
		t.Errorf("Expected daily usage 25%%, got %f", status.UsageDailyPct)
	}
	if status.LastUpdated.IsZero() {
		t.Error("Expected last_updated to be set")
	}
}

func TestRateLimiterZeroLimits(t *testing.T) {
	rl := NewRateLimiter()
	rl.Update(0, 10, 0, 100)

	status := rl.Status()
	if status.Usage15MinPct != 0 {
		t.Errorf("Expected 0%% with zero limit, got %f", status.Usage15MinPct)
	}
	if status.UsageDailyPct != 0 {
		t.Errorf("Expected 0%% with zero limit, got %f", status.UsageDailyPct)
	}
}
