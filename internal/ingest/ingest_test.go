package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fittracker-api/internal/database"
	"fittracker-api/internal/strava"
	"fittracker-api/internal/weather"
)

func setupIngest(t *testing.T, handler http.Handler) (*Service, *database.DB, string) {
	t.Helper()

	dbPath := t.TempDir() + "/test.db"
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := strava.NewClient("id", "secret")
	client.SetBaseURL(server.URL)

	svc := NewService(db, client, weather.NoopProvider{})

	userID, err := db.UpsertUser(&database.User{
		StravaID:     12345,
		AccessToken:  "valid_token",
		RefreshToken: "refresh",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return svc, db, userID
}

func activitiesPage(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(body))
			return
		}
		w.Write([]byte(`[]`))
	})
}

func TestSyncStoresActivities(t *testing.T) {
	svc, db, userID := setupIngest(t, activitiesPage(`[
		{"id": 1, "name": "Morning Run", "sport_type": "Run", "distance": 10000.0,
		 "moving_time": 3000, "average_heartrate": 150.0, "start_date": "2026-08-30T07:00:00Z",
		 "start_latlng": [59.91, 10.75], "kudos_count": 4},
		{"id": 2, "name": "Evening Ride", "sport_type": "Ride", "distance": 30000.0,
		 "moving_time": 4500, "start_date": "2026-08-30T18:00:00Z"}
	]`))

	result, err := svc.Sync(context.Background(), userID, 1, 30, false, false)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if result.Count != 2 {
		t.Fatalf("Expected 2 activities, got %d", result.Count)
	}
	if result.Pages != 1 {
		t.Errorf("Expected 1 page, got %d", result.Pages)
	}

	stored, err := db.ListActivities(userID, 0, 0)
	if err != nil {
		t.Fatalf("Failed to list stored activities: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored activities, got %d", len(stored))
	}

	// Newest first: the ride started later
	if stored[0].Name != "Evening Ride" {
		t.Errorf("Expected 'Evening Ride' first, got %s", stored[0].Name)
	}

	run := stored[1]
	if run.SportType != "Run" {
		t.Errorf("Expected sport 'Run', got %s", run.SportType)
	}
	if run.StartLat == nil || *run.StartLat != 59.91 {
		t.Errorf("Expected start_lat 59.91, got %v", run.StartLat)
	}
	if run.KudosCount != 4 {
		t.Errorf("Expected kudos_count 4, got %d", run.KudosCount)
	}
}

func TestSyncFieldDefaults(t *testing.T) {
	svc, db, userID := setupIngest(t, activitiesPage(`[
		{"id": 1, "type": "Workout", "start_date": "not-a-date"}
	]`))

	before := time.Now().Unix()
	if _, err := svc.Sync(context.Background(), userID, 1, 30, false, false); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	stored, err := db.ListActivities(userID, 0, 0)
	if err != nil {
		t.Fatalf("Failed to list activities: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(stored))
	}

	a := stored[0]
	if a.Name != "Unknown Activity" {
		t.Errorf("Expected default name, got %s", a.Name)
	}
	// sport_type absent falls back to the legacy type field
	if a.SportType != "Workout" {
		t.Errorf("Expected sport 'Workout', got %s", a.SportType)
	}
	// Unparseable start_date falls back to now
	if a.StartDate < before {
		t.Errorf("Expected fallback start_date >= %d, got %d", before, a.StartDate)
	}
}

func TestSyncUnknownUser(t *testing.T) {
	svc, _, _ := setupIngest(t, activitiesPage(`[]`))

	_, err := svc.Sync(context.Background(), "no-such-user", 1, 30, false, false)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestSyncUserWithoutToken(t *testing.T) {
	svc, db, _ := setupIngest(t, activitiesPage(`[]`))

	bareID, err := db.UpsertUser(&database.User{StravaID: 999})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	_, err = svc.Sync(context.Background(), bareID, 1, 30, false, false)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestSyncTokenExpiredAborts(t *testing.T) {
	svc, db, userID := setupIngest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
	}))

	_, err := svc.Sync(context.Background(), userID, 1, 30, false, false)
	if !errors.Is(err, strava.ErrTokenExpired) {
		t.Fatalf("Expected ErrTokenExpired, got %v", err)
	}

	stored, err := db.ListActivities(userID, 0, 0)
	if err != nil {
		t.Fatalf("Failed to list activities: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("Expected nothing stored after aborted sync, got %d", len(stored))
	}
}

func TestSyncAllPaginates(t *testing.T) {
	svc, db, userID := setupIngest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`[{"id": 1, "name": "A", "sport_type": "Run", "start_date": "2026-08-30T07:00:00Z"}]`))
		case "2":
			w.Write([]byte(`[{"id": 2, "name": "B", "sport_type": "Run", "start_date": "2026-08-29T07:00:00Z"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))

	result, err := svc.Sync(context.Background(), userID, 1, 30, false, true)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if result.Count != 2 {
		t.Errorf("Expected 2 activities across pages, got %d", result.Count)
	}
	if result.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", result.Pages)
	}

	count, err := db.CountActivities(userID)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 stored, got %d", count)
	}
}

func TestSyncDetectsFirstActivityAndRecords(t *testing.T) {
	svc, db, userID := setupIngest(t, activitiesPage(`[
		{"id": 1, "name": "Big Ride", "sport_type": "Ride", "distance": 105000.0,
		 "moving_time": 14400, "average_speed": 7.3, "total_elevation_gain": 1200.0,
		 "start_date": "2026-08-30T07:00:00Z"}
	]`))

	if _, err := svc.Sync(context.Background(), userID, 1, 30, false, false); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	records, err := db.ListPersonalRecords(userID)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	// distance, average_speed and elevation_gain all set on the first activity
	if len(records) != 3 {
		t.Fatalf("Expected 3 personal records, got %d", len(records))
	}
	for _, r := range records {
		if r.PreviousValue != nil {
			t.Errorf("Expected nil previous_value for first record, got %v", r.PreviousValue)
		}
	}

	achievements, err := db.ListAchievements(userID)
	if err != nil {
		t.Fatalf("Failed to list achievements: %v", err)
	}

	codes := make(map[string]bool)
	for _, a := range achievements {
		codes[a.Code] = true
	}
	for _, want := range []string{"first_activity", "century", "endurance", "climber"} {
		if !codes[want] {
			t.Errorf("Expected achievement %q, got %v", want, codes)
		}
	}
	if codes["half_century"] {
		t.Error("Century and half century must be mutually exclusive")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	svc, db, userID := setupIngest(t, activitiesPage(`[
		{"id": 1, "name": "Big Ride", "sport_type": "Ride", "distance": 105000.0,
		 "moving_time": 14400, "start_date": "2026-08-30T07:00:00Z"}
	]`))

	if _, err := svc.Sync(context.Background(), userID, 1, 30, false, false); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}

	recordsAfterFirst, err := db.ListPersonalRecords(userID)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	achievementsAfterFirst, err := db.ListAchievements(userID)
	if err != nil {
		t.Fatalf("Failed to list achievements: %v", err)
	}

	// Re-sync of the same page must not duplicate anything
	if _, err := svc.Sync(context.Background(), userID, 1, 30, false, false); err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}

	count, err := db.CountActivities(userID)
	if err != nil {
		t.Fatalf("Failed to count activities: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 activity after re-sync, got %d", count)
	}

	records, err := db.ListPersonalRecords(userID)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != len(recordsAfterFirst) {
		t.Errorf("Expected %d records after re-sync, got %d", len(recordsAfterFirst), len(records))
	}

	achievements, err := db.ListAchievements(userID)
	if err != nil {
		t.Fatalf("Failed to list achievements: %v", err)
	}
	if len(achievements) != len(achievementsAfterFirst) {
		t.Errorf("Expected %d achievements after re-sync, got %d", len(achievementsAfterFirst), len(achievements))
	}
}

func TestSyncDetailedEnrichment(t *testing.T) {
	svc, db, userID := setupIngest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/athlete/activities":
			if r.URL.Query().Get("page") == "1" {
				w.Write([]byte(`[{"id": 1, "name": "Run", "sport_type": "Run", "start_date": "2026-08-30T07:00:00Z"}]`))
			} else {
				w.Write([]byte(`[]`))
			}
		case "/activities/1":
			w.Write([]byte(`{"id": 1, "name": "Run", "sport_type": "Run",
				"start_date": "2026-08-30T07:00:00Z",
				"description": "Tempo session", "calories": 650.0}`))
		default:
			http.NotFound(w, r)
		}
	}))

	if _, err := svc.Sync(context.Background(), userID, 1, 30, true, false); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	stored, err := db.ListActivities(userID, 0, 0)
	if err != nil {
		t.Fatalf("Failed to list activities: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(stored))
	}

	a := stored[0]
	if a.Description == nil || *a.Description != "Tempo session" {
		t.Errorf("Expected enriched description, got %v", a.Description)
	}
	if a.Calories == nil || *a.Calories != 650 {
		t.Errorf("Expected enriched calories 650, got %v", a.Calories)
	}
}

func TestSyncDetailFailureFallsBackToSummary(t *testing.T) {
	svc, db, userID := setupIngest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/athlete/activities":
			if r.URL.Query().Get("page") == "1" {
				w.Write([]byte(`[{"id": 1, "name": "Run", "sport_type": "Run", "start_date": "2026-08-30T07:00:00Z"}]`))
			} else {
				w.Write([]byte(`[]`))
			}
		default:
			http.Error(w, `{"message":"Server Error"}`, http.StatusInternalServerError)
		}
	}))

	if _, err := svc.Sync(context.Background(), userID, 1, 30, true, false); err != nil {
		t.Fatalf("Expected sync to survive detail failure, got %v", err)
	}

	count, err := db.CountActivities(userID)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected summary stored despite detail failure, got %d", count)
	}
}
