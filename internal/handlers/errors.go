package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ontheway/internal/devotional"
	"ontheway/internal/plan"
	"ontheway/internal/repository"
	"ontheway/internal/service"
	"ontheway/internal/validation"
)

func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
	}

	respondWithJSON(w, logger, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps domain errors to status codes. Only
// unexpected errors are logged; their detail never reaches the client.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case validation.IsValidationError(err):
		resp := errorResponse{Error: "validation failed"}
		for _, fe := range validation.Fields(err) {
			resp.Fields = append(resp.Fields, validationDetail{Field: fe.Field, Message: fe.Message})
		}
		respondWithJSON(w, logger, http.StatusBadRequest, resp)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, logger, http.StatusConflict, "email already registered", "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, logger, http.StatusUnauthorized, ErrInvalidCredentials, "", nil)
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		respondWithError(w, logger, http.StatusUnauthorized, ErrUnauthorized, "", nil)
	case errors.Is(err, plan.ErrDayNotFound):
		respondWithError(w, logger, http.StatusNotFound, "reading day not found", "", nil)
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, logger, http.StatusNotFound, "not found", "", nil)
	case errors.Is(err, devotional.ErrUnavailable):
		respondWithError(w, logger, http.StatusServiceUnavailable, "assistant unavailable", "devotional provider failed", err)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, "request failed", err)
	}
}
