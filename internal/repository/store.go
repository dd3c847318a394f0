// Package repository persists readers, their plans, sessions, preferences and
// the shared devotionals, behind interfaces with SQL and local implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"ontheway/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when registering an email that already has an account
	ErrDuplicateEmail = errors.New("email already registered")
)

// ProfileStore owns reader identity and the cached score fields
type ProfileStore interface {
	// CreateUser stores u and seeds its plan atomically. u.ID and timestamps are filled in.
	CreateUser(ctx context.Context, u *models.User, plan []models.ReadingDay) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error)
	LinkOAuthProvider(ctx context.Context, userID int64, provider, subject string) error
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error)
	UpdateScore(ctx context.Context, userID int64, score models.Score) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// PlanStore owns each reader's reading days
type PlanStore interface {
	// GetPlan returns the plan ordered by date; a reader without rows gets an empty plan.
	GetPlan(ctx context.Context, userID int64) ([]models.ReadingDay, error)
	SavePlan(ctx context.Context, userID int64, days []models.ReadingDay) error
	SaveReading(ctx context.Context, userID int64, day models.ReadingDay) error
}

// SessionStore owns login sessions
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, userID int64, expiresAt time.Time) (*models.Session, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// PreferenceStore owns the per-reader UI flags
type PreferenceStore interface {
	// GetPreferences returns stored flags, or defaults when none were saved
	GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error)
	SavePreferences(ctx context.Context, p *models.Preferences) error
	ListNotificationRecipients(ctx context.Context) ([]models.Preferences, error)
	MarkReminderSent(ctx context.Context, userID int64, date string) error
}

// DevotionalStore owns the devotionals shared by every reader, keyed by date
type DevotionalStore interface {
	GetDevotional(ctx context.Context, date string) (*models.Devotional, error)
	// PutDevotional keeps the first devotional stored for a date
	PutDevotional(ctx context.Context, d *models.Devotional) error
	ListDevotionals(ctx context.Context) ([]models.Devotional, error)
}

// Store is the full persistence surface the server is wired with
type Store interface {
	ProfileStore
	PlanStore
	SessionStore
	PreferenceStore
	DevotionalStore

	// RestoreUser inserts u keeping its ID and credential, for backup import
	RestoreUser(ctx context.Context, u *models.User) error
	Ping(ctx context.Context) error
	Close() error
}

func defaultPreferences(userID int64) *models.Preferences {
	return &models.Preferences{UserID: userID}
}
