package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ontheway/internal/models"
	"ontheway/internal/plan"
	"ontheway/internal/repository"
	"ontheway/internal/security"
	"ontheway/internal/validation"
)

// ReadingUpdate is the outcome of a plan mutation
type ReadingUpdate struct {
	Day   models.ReadingDay `json:"day"`
	Score models.Score      `json:"score"`
}

// ReadingService tracks completion of each reader's plan and keeps the cached score current
type ReadingService struct {
	plans  repository.PlanStore
	users  repository.ProfileStore
	year   int
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger

	mu    sync.Mutex
	locks map[int64]*userLock
}

// userLock serializes one reader's mutations; refs counts holders and waiters
type userLock struct {
	sync.Mutex
	refs int
}

// NewReadingService creates a reading service for the plan year in loc
func NewReadingService(plans repository.PlanStore, users repository.ProfileStore, year int, loc *time.Location, logger *zap.Logger) *ReadingService {
	return &ReadingService{
		plans:  plans,
		users:  users,
		year:   year,
		loc:    loc,
		now:    time.Now,
		logger: logger,
		locks:  make(map[int64]*userLock),
	}
}

// Year is the configured plan year
func (s *ReadingService) Year() int {
	return s.year
}

// TodayDate is the real-world date in the plan time zone
func (s *ReadingService) TodayDate() string {
	return plan.Today(s.now(), s.loc)
}

// lockUser blocks until the caller holds userID's lock. The returned func
// releases it and drops the entry once nobody else is waiting.
func (s *ReadingService) lockUser(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// Plan returns the stored plan, regenerating and saving it when the reader has none
func (s *ReadingService) Plan(ctx context.Context, userID int64) ([]models.ReadingDay, error) {
	days, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if len(days) > 0 {
		return days, nil
	}

	days = plan.Generate(s.year)
	if err := s.plans.SavePlan(ctx, userID, days); err != nil {
		return nil, fmt.Errorf("failed to seed plan: %w", err)
	}
	s.logger.Info("plan regenerated", zap.Int64("user_id", userID), zap.Int("year", s.year))
	return days, nil
}

// PlanOrDefault never fails: a store failure yields a generated plan and fallback=true
func (s *ReadingService) PlanOrDefault(ctx context.Context, userID int64) ([]models.ReadingDay, bool) {
	days, err := s.Plan(ctx, userID)
	if err != nil {
		s.logger.Error("plan fetch failed, serving default plan", zap.Int64("user_id", userID), zap.Error(err))
		return plan.Generate(s.year), true
	}
	return days, false
}

// Today returns the entry for the current date clamped into the plan year
func (s *ReadingService) Today(ctx context.Context, userID int64) (models.ReadingDay, error) {
	days, _ := s.PlanOrDefault(ctx, userID)
	date := plan.ReadingDate(s.TodayDate(), s.year)
	i := plan.Find(days, date)
	if i < 0 {
		return models.ReadingDay{}, plan.ErrDayNotFound
	}
	return days[i], nil
}

// Toggle flips the completion of one entry
func (s *ReadingService) Toggle(ctx context.Context, userID int64, date string) (*ReadingUpdate, error) {
	today := s.TodayDate()
	return s.mutate(ctx, userID, func(days []models.ReadingDay) ([]models.ReadingDay, models.ReadingDay, error) {
		return plan.Toggle(days, date, today)
	})
}

// SetCompletion sets the completion of one entry to an explicit state
func (s *ReadingService) SetCompletion(ctx context.Context, userID int64, date string, completed bool) (*ReadingUpdate, error) {
	today := s.TodayDate()
	return s.mutate(ctx, userID, func(days []models.ReadingDay) ([]models.ReadingDay, models.ReadingDay, error) {
		return plan.SetCompletion(days, date, completed, today)
	})
}

// SetNotes replaces the reader's note on one entry
func (s *ReadingService) SetNotes(ctx context.Context, userID int64, date, notes string) (*ReadingUpdate, error) {
	notes = security.SanitizeText(notes)
	if err := validation.ValidateNotes(notes); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(days []models.ReadingDay) ([]models.ReadingDay, models.ReadingDay, error) {
		return plan.SetNotes(days, date, notes)
	})
}

// mutate applies fn under the reader's lock, persists the changed entry, then
// scores the plan as re-read from the store and caches the score on the user.
func (s *ReadingService) mutate(ctx context.Context, userID int64,
	fn func([]models.ReadingDay) ([]models.ReadingDay, models.ReadingDay, error)) (*ReadingUpdate, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	days, err := s.Plan(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, entry, err := fn(days)
	if err != nil {
		return nil, err
	}

	if err := s.plans.SaveReading(ctx, userID, entry); err != nil {
		return nil, fmt.Errorf("failed to save reading: %w", err)
	}

	stored, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload plan: %w", err)
	}
	score := plan.Score(stored)
	if err := s.users.UpdateScore(ctx, userID, score); err != nil {
		return nil, fmt.Errorf("failed to update score: %w", err)
	}

	if i := plan.Find(stored, entry.Date); i >= 0 {
		entry = stored[i]
	}
	return &ReadingUpdate{Day: entry, Score: score}, nil
}
