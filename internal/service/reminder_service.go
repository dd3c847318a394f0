package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ontheway/internal/models"
	"ontheway/internal/plan"
	"ontheway/internal/repository"
)

// ReminderSender delivers a reading reminder to one reader
type ReminderSender interface {
	IsEnabled() bool
	SendReadingReminder(ctx context.Context, user *models.User, day models.ReadingDay) error
}

// ReminderService emails opted-in readers once a day after the reminder hour
type ReminderService struct {
	prefs  repository.PreferenceStore
	users  repository.ProfileStore
	plans  repository.PlanStore
	sender ReminderSender
	year   int
	hour   int
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewReminderService creates a reminder service
func NewReminderService(prefs repository.PreferenceStore, users repository.ProfileStore, plans repository.PlanStore,
	sender ReminderSender, year, hour int, loc *time.Location, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		prefs:  prefs,
		users:  users,
		plans:  plans,
		sender: sender,
		year:   year,
		hour:   hour,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// SendDue sends today's reminder to every opted-in reader that has not had it yet
// and returns how many were sent.
func (s *ReminderService) SendDue(ctx context.Context) (int, error) {
	if !s.sender.IsEnabled() {
		return 0, nil
	}

	now := s.now().In(s.loc)
	if now.Hour() < s.hour {
		return 0, nil
	}
	today := plan.Today(now, s.loc)
	if plan.ReadingDate(today, s.year) != today {
		return 0, nil
	}

	recipients, err := s.prefs.ListNotificationRecipients(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range recipients {
		if p.LastReminderDate == today {
			continue
		}
		delivered, err := s.remind(ctx, p.UserID, today)
		if err != nil {
			s.logger.Warn("reminder failed", zap.Int64("user_id", p.UserID), zap.Error(err))
			continue
		}
		if delivered {
			sent++
		}
	}

	if sent > 0 {
		s.logger.Info("reminders sent", zap.Int("count", sent), zap.String("date", today))
	}
	return sent, nil
}

// remind reports whether an email went out; readers who already finished today are only marked
func (s *ReminderService) remind(ctx context.Context, userID int64, today string) (bool, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}

	days, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return false, err
	}
	i := plan.Find(days, today)
	if i < 0 {
		return false, plan.ErrDayNotFound
	}
	if days[i].IsCompleted {
		return false, s.prefs.MarkReminderSent(ctx, userID, today)
	}

	if err := s.sender.SendReadingReminder(ctx, user, days[i]); err != nil {
		return false, err
	}
	return true, s.prefs.MarkReminderSent(ctx, userID, today)
}

// Run calls SendDue every interval until ctx is done
func (s *ReminderService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SendDue(ctx); err != nil {
				s.logger.Error("reminder run failed", zap.Error(err))
			}
		}
	}
}
