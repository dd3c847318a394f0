package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"ontheway/internal/security"
	"ontheway/internal/service"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	authService          *service.AuthService
	google               *OAuthProvider
	oauthRedirectBaseURL string
	states               *security.StateSigner
	logger               *zap.Logger
}

// NewAuthHandler creates a new auth handler. A nil google provider disables social sign-in.
func NewAuthHandler(authService *service.AuthService, google *OAuthProvider, oauthRedirectBaseURL string,
	states *security.StateSigner, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		google:               google,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		states:               states,
		logger:               logger,
	}
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	res, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		GroupName: req.GroupName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, res.Token, res.Session.ExpiresAt))
	respondWithJSON(w, h.logger, http.StatusCreated, res)
}

// Login authenticates with email and password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, res.Token, res.Session.ExpiresAt))
	respondWithJSON(w, h.logger, http.StatusOK, res)
}

// Logout ends the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := GetSessionFromContext(r.Context()); session != nil {
		if err := h.authService.Logout(r.Context(), session.ID); err != nil {
			respondWithServiceError(w, h.logger, err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// googleEnabled reports whether Google sign-in is configured
func (h *AuthHandler) googleEnabled() bool {
	return h.google != nil && h.google.Config != nil && h.google.Config.ClientID != "" && h.google.Config.ClientSecret != ""
}

// oauthConfig returns a copy of the provider config with the callback URL for r
func (h *AuthHandler) oauthConfig(r *http.Request) oauth2.Config {
	config := *h.google.Config
	config.RedirectURL = h.oauthRedirectURL(r, h.google.Name)
	return config
}
