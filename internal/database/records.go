package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PersonalRecord is a same-sport best value for a single metric
type PersonalRecord struct {
	ID            string
	UserID        string
	ActivityID    string
	SportType     string
	Metric        string
	Value         float64
	PreviousValue *float64
	AchievedAt    int64
	CreatedAt     int64
}

// Achievement is a rule-based badge earned by a single activity
type Achievement struct {
	ID          string
	UserID      string
	ActivityID  string
	Code        string
	Name        string
	Description string
	AchievedAt  int64
	CreatedAt   int64
}

// Goal is a user-scoped target with tracked progress
type Goal struct {
	ID        string
	UserID    string
	Name      string
	Metric    string
	Target    float64
	Progress  float64
	Period    string
	CreatedAt int64
	UpdatedAt int64
}

// CreatePersonalRecord appends a personal record
func (db *DB) CreatePersonalRecord(r *PersonalRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().Unix()

	_, err := db.conn.Exec(`
		INSERT INTO personal_records (
			id, user_id, activity_id, sport_type, metric,
			value, previous_value, achieved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.ActivityID, r.SportType, r.Metric,
		r.Value, r.PreviousValue, r.AchievedAt, r.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create personal record: %w", err)
	}
	return nil
}

// ListPersonalRecords returns a user's personal records newest first
func (db *DB) ListPersonalRecords(userID string) ([]*PersonalRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, activity_id, sport_type, metric,
		       value, previous_value, achieved_at, created_at
		FROM personal_records
		WHERE user_id = ?
		ORDER BY achieved_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal records: %w", err)
	}
	defer rows.Close()

	var records []*PersonalRecord
	for rows.Next() {
		var r PersonalRecord
		err := rows.Scan(
			&r.ID, &r.UserID, &r.ActivityID, &r.SportType, &r.Metric,
			&r.Value, &r.PreviousValue, &r.AchievedAt, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan personal record: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating personal records: %w", err)
	}

	return records, nil
}

// CountPersonalRecords returns the number of personal records for a user
func (db *DB) CountPersonalRecords(userID string) (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM personal_records WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count personal records: %w", err)
	}
	return count, nil
}

// CreateAchievement appends an achievement
func (db *DB) CreateAchievement(a *Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().Unix()

	_, err := db.conn.Exec(`
		INSERT INTO achievements (
			id, user_id, activity_id, code, name, description, achieved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.ActivityID, a.Code, a.Name, a.Description, a.AchievedAt, a.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create achievement: %w", err)
	}
	return nil
}

// ListAchievements returns a user's achievements newest first
func (db *DB) ListAchievements(userID string) ([]*Achievement, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, activity_id, code, name, description, achieved_at, created_at
		FROM achievements
		WHERE user_id = ?
		ORDER BY achieved_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*Achievement
	for rows.Next() {
		var a Achievement
		err := rows.Scan(
			&a.ID, &a.UserID, &a.ActivityID, &a.Code, &a.Name,
			&a.Description, &a.AchievedAt, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return achievements, nil
}

// CreateGoal inserts a new goal
func (db *DB) CreateGoal(g *Goal) error {
	now := time.Now().Unix()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := db.conn.Exec(`
		INSERT INTO goals (
			id, user_id, name, metric, target, progress, period, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.Name, g.Metric, g.Target, g.Progress, g.Period, g.CreatedAt, g.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// UpdateGoalProgress sets a goal's tracked progress
func (db *DB) UpdateGoalProgress(goalID string, progress float64) error {
	result, err := db.conn.Exec(`
		UPDATE goals SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, time.Now().Unix(), goalID)

	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("goal not found")
	}

	return nil
}

// ListGoals returns a user's goals newest first
func (db *DB) ListGoals(userID string) ([]*Goal, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, name, metric, target, progress, period, created_at, updated_at
		FROM goals
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*Goal
	for rows.Next() {
		var g Goal
		err := rows.Scan(
			&g.ID, &g.UserID, &g.Name, &g.Metric, &g.Target,
			&g.Progress, &g.Period, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}

	return goals, nil
}
