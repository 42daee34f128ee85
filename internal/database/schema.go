package database

// Schema contains all SQL statements for creating tables and indexes
const Schema = `
-- Users table: Strava athletes who have completed the OAuth flow
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,  -- Generated UUID
    strava_id INTEGER NOT NULL UNIQUE,

    -- Profile data
    firstname TEXT,
    lastname TEXT,
    email TEXT,
    profile_picture TEXT,
    city TEXT,
    country TEXT,

    -- OAuth tokens
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    token_expires_at INTEGER NOT NULL,

    -- Metadata
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Activities table: Denormalized copy of Strava activity data
CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,  -- Generated UUID
    strava_id INTEGER NOT NULL,
    user_id TEXT NOT NULL,

    name TEXT NOT NULL,
    sport_type TEXT NOT NULL,

    -- Numeric metrics (nullable; Strava omits what the device did not record)
    distance REAL,
    moving_time INTEGER,
    elapsed_time INTEGER,
    total_elevation_gain REAL,
    average_speed REAL,
    max_speed REAL,
    average_heartrate REAL,
    max_heartrate REAL,
    average_watts REAL,
    calories REAL,

    -- Geospatial fields
    start_lat REAL,
    start_lng REAL,
    end_lat REAL,
    end_lng REAL,
    map_polyline TEXT,
    map_summary_polyline TEXT,

    -- Social counters
    kudos_count INTEGER NOT NULL DEFAULT 0,
    comment_count INTEGER NOT NULL DEFAULT 0,
    achievement_count INTEGER NOT NULL DEFAULT 0,

    -- Optional enrichment
    description TEXT,
    weather TEXT,

    start_date INTEGER NOT NULL,  -- Unix timestamp
    created_at INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- OAuth states table: Single-use CSRF tokens for the redirect dance
CREATE TABLE IF NOT EXISTS oauth_states (
    state TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);

-- Personal records table: Same-sport best values per metric
CREATE TABLE IF NOT EXISTS personal_records (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    activity_id TEXT NOT NULL,
    sport_type TEXT NOT NULL,
    metric TEXT NOT NULL,  -- "distance", "average_speed" or "elevation_gain"
    value REAL NOT NULL,
    previous_value REAL,
    achieved_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Achievements table: Rule-based badges earned by single activities
CREATE TABLE IF NOT EXISTS achievements (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    activity_id TEXT NOT NULL,
    code TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    achieved_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Goals table: User-scoped targets with tracked progress
CREATE TABLE IF NOT EXISTS goals (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    metric TEXT NOT NULL,
    target REAL NOT NULL,
    progress REAL NOT NULL DEFAULT 0,
    period TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Indexes for activities table
CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id);
CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date DESC);
CREATE INDEX IF NOT EXISTS idx_activities_user_start ON activities(user_id, start_date DESC);

-- Uniqueness invariant: one stored activity per (strava_id, user_id)
CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_strava_user ON activities(strava_id, user_id);

-- Indexes for derived record tables
CREATE INDEX IF NOT EXISTS idx_personal_records_user ON personal_records(user_id);
CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id);
CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);

-- Index for state expiry sweeps
CREATE INDEX IF NOT EXISTS idx_oauth_states_expires ON oauth_states(expires_at);
`
