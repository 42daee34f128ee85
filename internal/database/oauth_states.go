package database

import (
	"fmt"
	"time"
)

// CreateOAuthState persists a single-use OAuth state token with an expiry
func (db *DB) CreateOAuthState(state string, ttl time.Duration) error {
	now := time.Now()
	_, err := db.conn.Exec(`
		INSERT INTO oauth_states (state, created_at, expires_at)
		VALUES (?, ?, ?)
	`, state, now.Unix(), now.Add(ttl).Unix())

	if err != nil {
		return fmt.Errorf("failed to create oauth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState atomically deletes a state token and reports whether it
// existed and had not expired. A consumed state can never validate twice.
func (db *DB) ConsumeOAuthState(state string) (bool, error) {
	result, err := db.conn.Exec(`
		DELETE FROM oauth_states WHERE state = ? AND expires_at > ?
	`, state, time.Now().Unix())

	if err != nil {
		return false, fmt.Errorf("failed to consume oauth state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// DeleteExpiredOAuthStates removes states past their expiry. Returns the
// number removed.
func (db *DB) DeleteExpiredOAuthStates() (int64, error) {
	result, err := db.conn.Exec(`
		DELETE FROM oauth_states WHERE expires_at <= ?
	`, time.Now().Unix())

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired oauth states: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
