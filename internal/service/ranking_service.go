package service

import (
	"context"
	"fmt"

	"ontheway/internal/models"
	"ontheway/internal/ranking"
	"ontheway/internal/repository"
)

// RankingService builds the leaderboards from every reader's cached score
type RankingService struct {
	users repository.ProfileStore
}

// NewRankingService creates a new ranking service
func NewRankingService(users repository.ProfileStore) *RankingService {
	return &RankingService{users: users}
}

// Members returns the dense-ranked member leaderboard
func (s *RankingService) Members(ctx context.Context) ([]models.MemberRankingEntry, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ranking.RankMembers(users), nil
}

// Groups returns the group leaderboard by average points
func (s *RankingService) Groups(ctx context.Context) ([]models.GroupRankingEntry, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ranking.RankGroups(users), nil
}
