package devotional

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ontheway/internal/models"
)

const generateTimeout = 60 * time.Second

// Service serves one devotional per date, generating it at most once
// across concurrent requests and persisting it in the cache.
type Service struct {
	provider Provider
	cache    Cache
	logger   *zap.Logger
	group    singleflight.Group
}

// NewService creates a devotional service. A nil provider disables generation;
// cached devotionals are still served.
func NewService(provider Provider, cache Cache, logger *zap.Logger) *Service {
	return &Service{provider: provider, cache: cache, logger: logger}
}

// Enabled reports whether content can be generated
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// ForDay returns the devotional for day's date, generating it from the title when absent
func (s *Service) ForDay(ctx context.Context, day models.ReadingDay) (*models.Devotional, error) {
	d, err := s.cache.Get(ctx, day.Date)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("devotional cache lookup failed", zap.String("date", day.Date), zap.Error(err))
	}
	if s.provider == nil {
		return nil, ErrUnavailable
	}

	v, err, shared := s.group.Do(day.Date, func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail the others.
		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()
		return s.generate(genCtx, day)
	})
	if err != nil {
		s.logger.Error("devotional generation failed", zap.String("date", day.Date), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if shared {
		s.logger.Debug("devotional generation shared", zap.String("date", day.Date))
	}
	return v.(*models.Devotional), nil
}

func (s *Service) generate(ctx context.Context, day models.ReadingDay) (*models.Devotional, error) {
	// Another instance may have stored it while we waited.
	if d, err := s.cache.Get(ctx, day.Date); err == nil {
		return d, nil
	}

	d, err := s.provider.Devotional(ctx, day.Title)
	if err != nil {
		return nil, err
	}
	d.Date = day.Date
	d.CreatedAt = time.Now().UTC()

	if err := s.cache.Put(ctx, d); err != nil {
		s.logger.Warn("failed to store devotional", zap.String("date", day.Date), zap.Error(err))
		return d, nil
	}

	// Re-read so every caller sees the first stored version.
	if stored, err := s.cache.Get(ctx, day.Date); err == nil {
		return stored, nil
	}
	return d, nil
}

// Ask answers question using the day's reading as context
func (s *Service) Ask(ctx context.Context, question string, day models.ReadingDay) (string, error) {
	if s.provider == nil {
		return "", ErrUnavailable
	}
	answer, err := s.provider.Ask(ctx, question, day.Title)
	if err != nil {
		s.logger.Error("assistant failed", zap.String("date", day.Date), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return answer, nil
}
