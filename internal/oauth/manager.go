package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"fittracker-api/internal/config"
	"fittracker-api/internal/database"
	"fittracker-api/internal/metrics"
	"fittracker-api/internal/strava"
)

const (
	authorizationURL = "https://www.strava.com/oauth/authorize"
	scope            = "read,activity:read_all,profile:read_all"
	stateTTL         = 10 * time.Minute
)

// ErrInvalidState indicates the callback carried a state token that was
// never issued, already consumed, or expired. Callers reject the request
// outright; no user record is touched.
var ErrInvalidState = errors.New("invalid or expired state")

// Manager handles the OAuth 2.0 flow with Strava
type Manager struct {
	config       *config.Config
	db           *database.DB
	stravaClient *strava.Client
	logger       *slog.Logger
}

// NewManager creates a new OAuth manager
func NewManager(cfg *config.Config, db *database.DB, stravaClient *strava.Client) *Manager {
	return &Manager{
		config:       cfg,
		db:           db,
		stravaClient: stravaClient,
		logger:       slog.Default(),
	}
}

// BeginAuth generates a CSRF state token, persists it with a short expiry and
// returns the Strava authorization URL embedding it
func (m *Manager) BeginAuth() (string, error) {
	state, err := generateRandomState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := m.db.CreateOAuthState(state, stateTTL); err != nil {
		return "", err
	}

	// Expired states accumulate only if flows are abandoned; sweep on each start
	if _, err := m.db.DeleteExpiredOAuthStates(); err != nil {
		m.logger.Warn("Failed to sweep expired oauth states", "error", err)
	}

	params := url.Values{
		"client_id":       {m.config.StravaClientID},
		"redirect_uri":    {m.config.StravaRedirectURI},
		"response_type":   {"code"},
		"approval_prompt": {"force"},
		"scope":           {scope},
		"state":           {state},
	}

	authURL := fmt.Sprintf("%s?%s", authorizationURL, params.Encode())

	m.logger.Info("Generated auth URL", "state", state)

	return authURL, nil
}

// CompleteAuth validates and consumes the state token, exchanges the code for
// tokens and upserts the user record keyed by Strava athlete id. Returns the
// internal user id.
func (m *Manager) CompleteAuth(ctx context.Context, code, state string) (string, error) {
	valid, err := m.db.ConsumeOAuthState(state)
	if err != nil {
		return "", err
	}
	if !valid {
		metrics.OAuthFlowsTotal.WithLabelValues(metrics.OAuthResultInvalidState).Inc()
		return "", ErrInvalidState
	}

	m.logger.Info("Handling OAuth callback", "code_length", len(code))

	tokenResp, err := m.stravaClient.ExchangeCode(ctx, code)
	if err != nil {
		metrics.OAuthFlowsTotal.WithLabelValues(metrics.OAuthResultExchangeFail).Inc()
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}

	athlete := tokenResp.Athlete

	m.logger.Info("Exchanged code for tokens", "strava_id", athlete.ID)

	userID, err := m.db.UpsertUser(&database.User{
		StravaID:       athlete.ID,
		Firstname:      athlete.Firstname,
		Lastname:       athlete.Lastname,
		Email:          athlete.Email,
		ProfilePicture: athlete.Profile,
		City:           athlete.City,
		Country:        athlete.Country,
		AccessToken:    tokenResp.AccessToken,
		RefreshToken:   tokenResp.RefreshToken,
		TokenExpiresAt: tokenResp.ExpiresAt,
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("Stored user record", "user_id", userID, "strava_id", athlete.ID)
	metrics.OAuthFlowsTotal.WithLabelValues(metrics.OAuthResultSuccess).Inc()

	return userID, nil
}

// generateRandomState generates a cryptographically secure random state
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
