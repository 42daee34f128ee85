package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"fittracker-api/internal/database"
)

func fp(f float64) *float64 { return &f }
func ip(i int64) *int64     { return &i }
func sp(s string) *string   { return &s }

func TestActivitiesCSV(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	activities := []*database.Activity{
		{
			Name:               "Morning Run",
			SportType:          "Run",
			Distance:           fp(10000),
			MovingTime:         ip(3000),
			AverageSpeed:       fp(3.5),
			TotalElevationGain: fp(120),
			AverageHeartrate:   fp(150),
			Description:        sp("Easy pace"),
			StartDate:          time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC).Unix(),
		},
		{
			Name:      "Yoga",
			SportType: "Yoga",
			StartDate: time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC).Unix(),
		},
	}

	data, filename, err := Activities(activities, "user-1", "csv", now)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	if filename != "fittracker_user-1_2026-08-30.csv" {
		t.Errorf("Unexpected filename: %s", filename)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][3] != "Distance (km)" {
		t.Errorf("Unexpected header: %v", rows[0])
	}

	run := rows[1]
	if run[0] != "Morning Run" {
		t.Errorf("Expected name 'Morning Run', got %s", run[0])
	}
	if run[2] != "2026-08-29" {
		t.Errorf("Expected date '2026-08-29', got %s", run[2])
	}
	if run[3] != "10.0" {
		t.Errorf("Expected distance '10.0', got %s", run[3])
	}
	if run[4] != "50.0" {
		t.Errorf("Expected moving time '50.0' minutes, got %s", run[4])
	}
	if run[5] != "12.6" {
		t.Errorf("Expected avg speed '12.6', got %s", run[5])
	}
	if run[11] != "Easy pace" {
		t.Errorf("Expected description, got %s", run[11])
	}

	// Absent metrics serialize as empty cells, not zeros
	yoga := rows[2]
	if yoga[3] != "" || yoga[4] != "" || yoga[8] != "" {
		t.Errorf("Expected empty cells for nil metrics, got %v", yoga)
	}
}

func TestActivitiesEmptyList(t *testing.T) {
	data, _, err := Activities(nil, "user-1", "csv", time.Now())
	if err != nil {
		t.Fatalf("Failed to export empty list: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse csv: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected header only, got %d rows", len(rows))
	}
}

func TestActivitiesUnsupportedFormat(t *testing.T) {
	for _, format := range []string{"xml", "json", "CSV", ""} {
		data, _, err := Activities(nil, "user-1", format, time.Now())
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("format %q: expected ErrUnsupportedFormat, got %v", format, err)
		}
		if data != nil {
			t.Errorf("format %q: expected no output on error", format)
		}
	}
}
