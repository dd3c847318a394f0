package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ontheway/internal/database"
	"ontheway/internal/models"
)

// PreferencesRepository stores the per-user UI flags
type PreferencesRepository struct {
	db *database.DB
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *database.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetPreferences retrieves a user's flags, falling back to defaults
func (r *PreferencesRepository) GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	p := &models.Preferences{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT dark_mode, notifications_enabled, last_reminder_date, updated_at
		FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&p.DarkMode, &p.NotificationsEnabled, &p.LastReminderDate, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultPreferences(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return p, nil
}

// SavePreferences updates or inserts the UI flags, leaving the reminder bookkeeping alone
func (r *PreferencesRepository) SavePreferences(ctx context.Context, p *models.Preferences) error {
	p.UpdatedAt = time.Now().UTC()
	query := r.db.Dialect.UpsertQuery("user_preferences",
		[]string{"user_id"},
		[]string{"user_id", "dark_mode", "notifications_enabled", "updated_at"})
	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.DarkMode, p.NotificationsEnabled, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// ListNotificationRecipients returns preferences of users who opted into reminders
func (r *PreferencesRepository) ListNotificationRecipients(ctx context.Context) ([]models.Preferences, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, dark_mode, notifications_enabled, last_reminder_date, updated_at
		FROM user_preferences WHERE notifications_enabled = ? ORDER BY user_id`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification recipients: %w", err)
	}
	defer rows.Close()

	var out []models.Preferences
	for rows.Next() {
		var p models.Preferences
		if err := rows.Scan(&p.UserID, &p.DarkMode, &p.NotificationsEnabled, &p.LastReminderDate, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preferences: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkReminderSent records the date of the last reminder email
func (r *PreferencesRepository) MarkReminderSent(ctx context.Context, userID int64, date string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE user_preferences SET last_reminder_date = ? WHERE user_id = ?", date, userID); err != nil {
		return fmt.Errorf("failed to mark reminder: %w", err)
	}
	return nil
}
