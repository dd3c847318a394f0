package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ontheway/internal/models"
	"ontheway/internal/service"
)

// RankingHandler serves the leaderboards
type RankingHandler struct {
	rankings *service.RankingService
	logger   *zap.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(rankings *service.RankingService, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{rankings: rankings, logger: logger}
}

// Members returns the member leaderboard; a store failure yields an empty list
func (h *RankingHandler) Members(w http.ResponseWriter, r *http.Request) {
	entries, err := h.rankings.Members(r.Context())
	if err != nil {
		h.logger.Error("member ranking failed", zap.Error(err))
		entries = []models.MemberRankingEntry{}
	}
	respondWithJSON(w, h.logger, http.StatusOK, entries)
}

// Groups returns the group leaderboard; a store failure yields an empty list
func (h *RankingHandler) Groups(w http.ResponseWriter, r *http.Request) {
	entries, err := h.rankings.Groups(r.Context())
	if err != nil {
		h.logger.Error("group ranking failed", zap.Error(err))
		entries = []models.GroupRankingEntry{}
	}
	respondWithJSON(w, h.logger, http.StatusOK, entries)
}
