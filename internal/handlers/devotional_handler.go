package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ontheway/internal/devotional"
	"ontheway/internal/security"
	"ontheway/internal/service"
)

// DevotionalHandler serves the daily devotional and the Bible assistant
type DevotionalHandler struct {
	devotionals *devotional.Service
	readings    *service.ReadingService
	logger      *zap.Logger
}

// NewDevotionalHandler creates a new devotional handler
func NewDevotionalHandler(devotionals *devotional.Service, readings *service.ReadingService, logger *zap.Logger) *DevotionalHandler {
	return &DevotionalHandler{devotionals: devotionals, readings: readings, logger: logger}
}

// Today returns the devotional for today's reading, or 204 when none can be produced
func (h *DevotionalHandler) Today(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	day, err := h.readings.Today(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	d, err := h.devotionals.ForDay(r.Context(), day)
	if err != nil {
		h.logger.Warn("devotional omitted", zap.String("date", day.Date), zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, d)
}

// Ask answers a question about today's reading
func (h *DevotionalHandler) Ask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	day, err := h.readings.Today(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	answer, err := h.devotionals.Ask(r.Context(), security.SanitizeText(req.Question), day)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, askResponse{Answer: answer})
}
