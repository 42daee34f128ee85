package database

import (
	"testing"
	"time"
)

func TestConsumeOAuthState(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.CreateOAuthState("state123", 10*time.Minute); err != nil {
		t.Fatalf("Failed to create state: %v", err)
	}

	valid, err := db.ConsumeOAuthState("state123")
	if err != nil {
		t.Fatalf("Failed to consume state: %v", err)
	}
	if !valid {
		t.Error("Expected state to be valid")
	}

	// Single use: a second consume must fail
	valid, err = db.ConsumeOAuthState("state123")
	if err != nil {
		t.Fatalf("Failed on second consume: %v", err)
	}
	if valid {
		t.Error("Expected consumed state to be invalid")
	}
}

func TestConsumeUnknownOAuthState(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	valid, err := db.ConsumeOAuthState("never-issued")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if valid {
		t.Error("Expected unknown state to be invalid")
	}
}

func TestConsumeExpiredOAuthState(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.CreateOAuthState("expired", -1*time.Minute); err != nil {
		t.Fatalf("Failed to create state: %v", err)
	}

	valid, err := db.ConsumeOAuthState("expired")
	if err != nil {
		t.Fatalf("Failed to consume state: %v", err)
	}
	if valid {
		t.Error("Expected expired state to be invalid")
	}
}

func TestDeleteExpiredOAuthStates(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.CreateOAuthState("live", 10*time.Minute); err != nil {
		t.Fatalf("Failed to create state: %v", err)
	}
	if err := db.CreateOAuthState("dead1", -1*time.Minute); err != nil {
		t.Fatalf("Failed to create state: %v", err)
	}
	if err := db.CreateOAuthState("dead2", -2*time.Minute); err != nil {
		t.Fatalf("Failed to create state: %v", err)
	}

	removed, err := db.DeleteExpiredOAuthStates()
	if err != nil {
		t.Fatalf("Failed to delete expired states: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}

	valid, err := db.ConsumeOAuthState("live")
	if err != nil {
		t.Fatalf("Failed to consume live state: %v", err)
	}
	if !valid {
		t.Error("Expected live state to survive the sweep")
	}
}
