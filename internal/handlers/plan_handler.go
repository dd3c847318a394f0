package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"ontheway/internal/plan"
	"ontheway/internal/service"
	"ontheway/internal/validation"
)

// PlanHandler serves the reading plan and its completion actions
type PlanHandler struct {
	readings *service.ReadingService
	logger   *zap.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(readings *service.ReadingService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{readings: readings, logger: logger}
}

// GetPlan returns the plan, or one month of it, with the score of the whole plan
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	month := 0
	if m := r.URL.Query().Get("month"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			respondWithServiceError(w, h.logger, validation.Error{Field: "month", Message: "must be between 1 and 12"})
			return
		}
		month = n
	}

	days, fallback := h.readings.PlanOrDefault(r.Context(), user.ID)
	score := plan.Score(days)
	if month > 0 {
		days = plan.FilterMonth(days, month)
	}

	respondWithJSON(w, h.logger, http.StatusOK, planResponse{
		Days:            days,
		Points:          score.Points,
		ProgressPercent: score.ProgressPercent,
		Fallback:        fallback,
	})
}

// GetToday returns today's entry
func (h *PlanHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	day, err := h.readings.Today(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, todayResponse{Day: day, Date: h.readings.TodayDate()})
}

// Toggle flips the completion of the entry at {date}
func (h *PlanHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	upd, err := h.readings.Toggle(r.Context(), user.ID, date)
	h.respondWithUpdate(w, upd, err)
}

// SetCompletion sets the completion of the entry at {date}
func (h *PlanHandler) SetCompletion(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	var req completionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	upd, err := h.readings.SetCompletion(r.Context(), user.ID, date, *req.IsCompleted)
	h.respondWithUpdate(w, upd, err)
}

// SetNotes replaces the note on the entry at {date}
func (h *PlanHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	var req notesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	upd, err := h.readings.SetNotes(r.Context(), user.ID, date, req.Notes)
	h.respondWithUpdate(w, upd, err)
}

func (h *PlanHandler) pathDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.PathValue("date")
	if !plan.ValidDate(date) {
		respondWithServiceError(w, h.logger, validation.Error{Field: "date", Message: "must be YYYY-MM-DD"})
		return "", false
	}
	return date, true
}

func (h *PlanHandler) respondWithUpdate(w http.ResponseWriter, upd *service.ReadingUpdate, err error) {
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, readingUpdateResponse{
		Day:             upd.Day,
		Points:          upd.Score.Points,
		ProgressPercent: upd.Score.ProgressPercent,
	})
}
