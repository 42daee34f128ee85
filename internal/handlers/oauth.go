package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"fittracker-api/internal/oauth"
)

// OAuthHandler handles the OAuth flow endpoints
type OAuthHandler struct {
	oauthManager *oauth.Manager
	logger       *slog.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthManager *oauth.Manager) *OAuthHandler {
	return &OAuthHandler{
		oauthManager: oauthManager,
		logger:       slog.Default(),
	}
}

// HandleAuthStart handles GET /api/auth/strava and returns the provider
// authorization URL for the client to redirect to
func (h *OAuthHandler) HandleAuthStart(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.oauthManager.BeginAuth()
	if err != nil {
		h.logger.Error("Failed to start OAuth flow", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start OAuth flow")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// HandleCallback handles GET /api/auth/strava/callback. An unknown or expired
// state is always a hard 400; no user record is touched in that case.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")

	if errorParam := query.Get("error"); errorParam != "" {
		h.logger.Warn("OAuth authorization denied", "error", errorParam)
		writeError(w, http.StatusBadRequest, "authorization denied: "+errorParam)
		return
	}

	if code == "" || state == "" {
		h.logger.Warn("Missing OAuth parameters", "has_code", code != "", "has_state", state != "")
		writeError(w, http.StatusBadRequest, "missing code or state parameter")
		return
	}

	userID, err := h.oauthManager.CompleteAuth(r.Context(), code, state)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			h.logger.Warn("OAuth callback with invalid state", "state", state)
			writeError(w, http.StatusBadRequest, "invalid or expired state parameter")
			return
		}
		h.logger.Error("Failed to complete OAuth flow", "error", err)
		writeError(w, http.StatusBadRequest, "failed to exchange code for token")
		return
	}

	h.logger.Info("OAuth flow completed", "user_id", userID)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user_id": userID,
	})
}
