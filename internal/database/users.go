package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents a Strava athlete who has authorized the application
type User struct {
	ID             string
	StravaID       int64
	Firstname      *string
	Lastname       *string
	Email          *string
	ProfilePicture *string
	City           *string
	Country        *string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt int64
	CreatedAt      int64
	UpdatedAt      int64
}

const userColumns = `id, strava_id, firstname, lastname, email, profile_picture,
       city, country, access_token, refresh_token, token_expires_at,
       created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.StravaID, &u.Firstname, &u.Lastname, &u.Email, &u.ProfilePicture,
		&u.City, &u.Country, &u.AccessToken, &u.RefreshToken, &u.TokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser inserts a user keyed by Strava athlete id. If a user with the
// same strava_id already exists only the token pair and updated_at are
// refreshed; profile fields from the first authorization are kept.
// Returns the stored internal user id.
func (db *DB) UpsertUser(u *User) (string, error) {
	now := time.Now().Unix()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := db.conn.Exec(`
		INSERT INTO users (
			id, strava_id, firstname, lastname, email, profile_picture,
			city, country, access_token, refresh_token, token_expires_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(strava_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at,
			updated_at = excluded.updated_at
	`, u.ID, u.StravaID, u.Firstname, u.Lastname, u.Email, u.ProfilePicture,
		u.City, u.Country, u.AccessToken, u.RefreshToken, u.TokenExpiresAt,
		u.CreatedAt, u.UpdatedAt)

	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}

	// The stored id differs from u.ID when the conflict branch ran
	var id string
	err = db.conn.QueryRow(`SELECT id FROM users WHERE strava_id = ?`, u.StravaID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user id: %w", err)
	}
	return id, nil
}

// GetUser retrieves a user by internal id. Returns nil when not found.
func (db *DB) GetUser(userID string) (*User, error) {
	u, err := scanUser(db.conn.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE id = ?
	`, userID))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByStravaID retrieves a user by Strava athlete id. Returns nil when not found.
func (db *DB) GetUserByStravaID(stravaID int64) (*User, error) {
	u, err := scanUser(db.conn.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE strava_id = ?
	`, stravaID))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by strava id: %w", err)
	}
	return u, nil
}

// UpdateUserTokens updates a user's OAuth token pair
func (db *DB) UpdateUserTokens(userID, accessToken, refreshToken string, expiresAt int64) error {
	result, err := db.conn.Exec(`
		UPDATE users
		SET access_token = ?, refresh_token = ?, token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`, accessToken, refreshToken, expiresAt, time.Now().Unix(), userID)

	if err != nil {
		return fmt.Errorf("failed to update user tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// DeleteUser removes a user. Activities, personal records, achievements and
// goals cascade via foreign keys. Returns false when the user did not exist.
func (db *DB) DeleteUser(userID string) (bool, error) {
	result, err := db.conn.Exec(`DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
