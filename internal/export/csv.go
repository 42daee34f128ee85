// Package export serializes stored activities for download
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fittracker-api/internal/database"
)

// ErrUnsupportedFormat indicates a requested export format other than csv
var ErrUnsupportedFormat = errors.New("unsupported export format")

// FormatCSV is the only supported export format
const FormatCSV = "csv"

var header = []string{
	"Name", "Sport", "Date", "Distance (km)", "Moving Time (min)",
	"Avg Speed (km/h)", "Max Speed (km/h)", "Elevation Gain (m)",
	"Avg Heart Rate", "Max Heart Rate", "Calories", "Description",
}

// Activities serializes a user's activities as CSV, applying the same unit
// conversions as the dashboard. Returns the serialized bytes and a filename
// embedding the user id and current date. Any format other than "csv" is an
// invalid-input error and nothing is emitted.
func Activities(activities []*database.Activity, userID, format string, now time.Time) ([]byte, string, error) {
	if format != FormatCSV {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, "", fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, a := range activities {
		row := []string{
			a.Name,
			a.SportType,
			time.Unix(a.StartDate, 0).UTC().Format("2006-01-02"),
			formatKm(a.Distance),
			formatMinutes(a.MovingTime),
			formatKmh(a.AverageSpeed),
			formatKmh(a.MaxSpeed),
			formatFloat(a.TotalElevationGain),
			formatFloat(a.AverageHeartrate),
			formatFloat(a.MaxHeartrate),
			formatFloat(a.Calories),
			stringValue(a.Description),
		}
		if err := w.Write(row); err != nil {
			return nil, "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush csv: %w", err)
	}

	filename := fmt.Sprintf("fittracker_%s_%s.csv", userID, now.UTC().Format("2006-01-02"))

	return buf.Bytes(), filename, nil
}

func formatKm(meters *float64) string {
	if meters == nil {
		return ""
	}
	return strconv.FormatFloat(*meters/1000, 'f', 1, 64)
}

func formatMinutes(seconds *int64) string {
	if seconds == nil {
		return ""
	}
	return strconv.FormatFloat(float64(*seconds)/60, 'f', 1, 64)
}

func formatKmh(mps *float64) string {
	if mps == nil {
		return ""
	}
	return strconv.FormatFloat(*mps*3.6, 'f', 1, 64)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 1, 64)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
