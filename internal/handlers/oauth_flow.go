package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"ontheway/internal/security"
	"ontheway/internal/validation"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

const oauthCookieTTL = 10 * time.Minute

// StartOAuth redirects to Google. The optional ?group= is kept for first sign-ins.
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.googleEnabled() {
		respondWithError(w, h.logger, http.StatusNotFound, "OAuth provider not configured", "", nil)
		return
	}

	state := h.states.New()
	h.setTempCookie(w, r, oauthStateCookie, state, oauthCookieTTL)
	if group := strings.TrimSpace(r.URL.Query().Get("group")); group != "" {
		h.setTempCookie(w, r, oauthGroupCookie, url.QueryEscape(group), oauthCookieTTL)
	}

	config := h.oauthConfig(r)
	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback completes the Google sign-in and sets the session cookie
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.googleEnabled() {
		respondWithError(w, h.logger, http.StatusNotFound, "OAuth provider not configured", "", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "missing authorization code", "", nil)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state || !h.states.Verify(state) {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid OAuth state", "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := h.oauthConfig(r)
	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "failed to exchange OAuth code", "oauth exchange failed", err)
		return
	}

	userInfo, err := h.fetchGoogleUser(ctx, config, token)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadGateway, "failed to fetch OAuth profile", "oauth userinfo failed", err)
		return
	}

	group := ""
	if cookie, err := r.Cookie(oauthGroupCookie); err == nil {
		group, _ = url.QueryUnescape(cookie.Value)
	}

	h.clearTempCookie(w, r, oauthStateCookie)
	h.clearTempCookie(w, r, oauthGroupCookie)

	res, err := h.authService.OAuthLogin(r.Context(), h.google.Name, userInfo.Subject, userInfo.Email, userInfo.Name, group)
	if err != nil {
		if validation.IsValidationError(err) {
			h.logger.Info("oauth sign-in needs more profile data", zap.Error(err))
		}
		respondWithServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, res.Token, res.Session.ExpiresAt))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) fetchGoogleUser(ctx context.Context, config oauth2.Config, token *oauth2.Token) (oauthUserInfo, error) {
	client := config.Client(ctx, token)
	resp, err := client.Get(h.google.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("google user info returned %d", resp.StatusCode)
	}

	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	if payload.ID == "" || !payload.VerifiedEmail {
		return oauthUserInfo{}, errors.New("google account has no verified email")
	}

	return oauthUserInfo{Subject: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, security.CreateDeleteCookie(r, name))
}
