package handlers

import (
	"net/http"
)

// Handlers bundles every handler the router mounts
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Plan       *PlanHandler
	Ranking    *RankingHandler
	Devotional *DevotionalHandler
	Health     *HealthHandler
}

// NewRouter registers the API routes and wraps them with recovery and access logging
func NewRouter(h Handlers) http.Handler {
	m := h.Middleware
	mux := http.NewServeMux()

	// Probes
	mux.HandleFunc("GET /healthz", h.Health.Healthz)
	mux.HandleFunc("GET /readyz", h.Health.Readyz)

	// Auth
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", m.RequireAuth(h.Auth.Logout))
	mux.HandleFunc("GET /auth/google/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/google/callback", h.Auth.OAuthCallback)

	// Profile
	mux.HandleFunc("GET /api/me", m.RequireAuth(h.Profile.GetMe))
	mux.HandleFunc("PATCH /api/me", m.RequireAuth(h.Profile.UpdateMe))
	mux.HandleFunc("GET /api/me/preferences", m.RequireAuth(h.Profile.GetPreferences))
	mux.HandleFunc("PUT /api/me/preferences", m.RequireAuth(h.Profile.UpdatePreferences))

	// Plan
	mux.HandleFunc("GET /api/plan", m.RequireAuth(h.Plan.GetPlan))
	mux.HandleFunc("GET /api/plan/today", m.RequireAuth(h.Plan.GetToday))
	mux.HandleFunc("POST /api/plan/{date}/toggle", m.RequireAuth(h.Plan.Toggle))
	mux.HandleFunc("PUT /api/plan/{date}", m.RequireAuth(h.Plan.SetCompletion))
	mux.HandleFunc("PUT /api/plan/{date}/notes", m.RequireAuth(h.Plan.SetNotes))

	// Rankings
	mux.HandleFunc("GET /api/rankings/members", m.RequireAuth(h.Ranking.Members))
	mux.HandleFunc("GET /api/rankings/groups", m.RequireAuth(h.Ranking.Groups))

	// Devotional and assistant
	mux.HandleFunc("GET /api/devotionals/today", m.RequireAuth(h.Devotional.Today))
	mux.HandleFunc("POST /api/assistant", m.RateLimit(m.RequireAuth(h.Devotional.Ask)))

	return Recover(m.logger)(Logging(m.logger)(mux))
}
