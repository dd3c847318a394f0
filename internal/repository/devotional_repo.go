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

var devotionalColumns = []string{"date", "title", "summary", "reflection", "prayer", "key_verse", "created_at"}

// DevotionalRepository stores devotionals shared by all readers
type DevotionalRepository struct {
	db *database.DB
}

// NewDevotionalRepository creates a new devotional repository
func NewDevotionalRepository(db *database.DB) *DevotionalRepository {
	return &DevotionalRepository{db: db}
}

// GetDevotional retrieves the devotional for a date
func (r *DevotionalRepository) GetDevotional(ctx context.Context, date string) (*models.Devotional, error) {
	d := &models.Devotional{}
	err := r.db.QueryRowContext(ctx, `
		SELECT date, title, summary, reflection, prayer, key_verse, created_at
		FROM devotionals WHERE date = ?`, date,
	).Scan(&d.Date, &d.Title, &d.Summary, &d.Reflection, &d.Prayer, &d.KeyVerse, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get devotional: %w", err)
	}
	return d, nil
}

// PutDevotional stores d unless a devotional already exists for its date
func (r *DevotionalRepository) PutDevotional(ctx context.Context, d *models.Devotional) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	query := r.db.Dialect.InsertIgnoreQuery("devotionals", devotionalColumns)
	if _, err := r.db.ExecContext(ctx, query,
		d.Date, d.Title, d.Summary, d.Reflection, d.Prayer, d.KeyVerse, d.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to store devotional: %w", err)
	}
	return nil
}

// ListDevotionals returns every stored devotional ordered by date
func (r *DevotionalRepository) ListDevotionals(ctx context.Context) ([]models.Devotional, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, title, summary, reflection, prayer, key_verse, created_at
		FROM devotionals ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devotionals: %w", err)
	}
	defer rows.Close()

	var out []models.Devotional
	for rows.Next() {
		var d models.Devotional
		if err := rows.Scan(&d.Date, &d.Title, &d.Summary, &d.Reflection, &d.Prayer, &d.KeyVerse, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan devotional: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
