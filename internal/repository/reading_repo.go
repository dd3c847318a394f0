package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ontheway/internal/database"
	"ontheway/internal/models"
)

var readingColumns = []string{"user_id", "date", "title", "chapters", "is_completed", "completed_at", "notes"}

// ReadingRepository handles database operations for reading plans
type ReadingRepository struct {
	db *database.DB
}

// NewReadingRepository creates a new reading repository
func NewReadingRepository(db *database.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// GetPlan returns the user's reading days ordered by date
func (r *ReadingRepository) GetPlan(ctx context.Context, userID int64) ([]models.ReadingDay, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, title, chapters, is_completed, completed_at, notes
		FROM readings
		WHERE user_id = ?
		ORDER BY date`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	defer rows.Close()

	days := []models.ReadingDay{}
	for rows.Next() {
		var d models.ReadingDay
		var chapters string
		if err := rows.Scan(&d.Date, &d.Title, &chapters, &d.IsCompleted, &d.CompletedAt, &d.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		if err := json.Unmarshal([]byte(chapters), &d.Chapters); err != nil {
			return nil, fmt.Errorf("failed to decode chapters for %s: %w", d.Date, err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SavePlan upserts every day of the plan in one transaction
func (r *ReadingRepository) SavePlan(ctx context.Context, userID int64, days []models.ReadingDay) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		return saveReadings(ctx, tx, userID, days)
	})
}

// SaveReading upserts a single reading day
func (r *ReadingRepository) SaveReading(ctx context.Context, userID int64, day models.ReadingDay) error {
	return saveReadings(ctx, r.db, userID, []models.ReadingDay{day})
}

func saveReadings(ctx context.Context, q database.DBTX, userID int64, days []models.ReadingDay) error {
	query := q.GetDialect().UpsertQuery("readings", []string{"user_id", "date"}, readingColumns)
	for _, d := range days {
		chapters, err := json.Marshal(d.Chapters)
		if err != nil {
			return fmt.Errorf("failed to encode chapters for %s: %w", d.Date, err)
		}
		if _, err := q.ExecContext(ctx, query,
			userID, d.Date, d.Title, string(chapters), d.IsCompleted, d.CompletedAt, d.Notes); err != nil {
			return fmt.Errorf("failed to save reading %s: %w", d.Date, err)
		}
	}
	return nil
}
