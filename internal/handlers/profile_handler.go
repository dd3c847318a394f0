package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ontheway/internal/models"
	"ontheway/internal/service"
)

// ProfileHandler serves the signed-in reader's profile and preferences
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// GetMe returns the current profile
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	respondWithJSON(w, h.logger, http.StatusOK, user)
}

// UpdateMe applies a partial profile update
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var upd models.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	updated, err := h.profiles.Update(r.Context(), user.ID, upd)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, updated)
}

// GetPreferences returns the reader's UI flags
func (h *ProfileHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	prefs, err := h.profiles.Preferences(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, prefs)
}

// UpdatePreferences replaces the reader's UI flags
func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req preferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	prefs, err := h.profiles.UpdatePreferences(r.Context(), user.ID, *req.DarkMode, *req.NotificationsEnabled)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, prefs)
}
