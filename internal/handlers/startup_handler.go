package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu      sync.RWMutex
	ready   bool
	current string
	steps   []StartupStep
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type startupSnapshot struct {
	Ready    bool              `json:"ready"`
	Current  string            `json:"current"`
	Progress int               `json:"progress"`
	Steps    []StartupStep     `json:"steps"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// NewStartupStatus creates a tracker for the named steps
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
			break
		}
	}
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *StartupStatus) snapshot() startupSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := startupSnapshot{Ready: s.ready, Current: s.current, Steps: append([]StartupStep(nil), s.steps...)}
	completed := 0
	for _, step := range s.steps {
		if step.Completed {
			completed++
		}
	}
	switch {
	case s.ready:
		snap.Progress = 100
	case len(s.steps) > 0:
		snap.Progress = completed * 100 / len(s.steps)
	}
	return snap
}

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	startup *StartupStatus
	checks  map[string]HealthCheck
	logger  *zap.Logger
}

// NewHealthHandler creates a health handler over the named dependency checks
func NewHealthHandler(startup *StartupStatus, checks map[string]HealthCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{startup: startup, checks: checks, logger: logger}
}

// Healthz reports that the process is serving
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports startup progress and dependency health
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	snap := h.startup.snapshot()
	status := http.StatusOK
	if !snap.Ready {
		status = http.StatusServiceUnavailable
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	snap.Checks = make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			snap.Checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		snap.Checks[name] = "ok"
	}

	respondWithJSON(w, h.logger, status, snap)
}
