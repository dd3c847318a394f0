// Package devotional produces the daily devotional shared by every reader and
// answers reader questions about the day's passage.
package devotional

import (
	"context"
	"errors"

	"ontheway/internal/models"
)

var (
	// ErrUnavailable is returned when no generation backend is configured or it failed
	ErrUnavailable = errors.New("devotional unavailable")
	// ErrCacheMiss is returned by a Cache that has nothing stored for a date
	ErrCacheMiss = errors.New("devotional not cached")
)

// Provider generates devotional content for a reading
type Provider interface {
	// Devotional returns title, summary, reflection, prayer and key verse for readingTitle.
	// The Date field of the result is left for the caller to set.
	Devotional(ctx context.Context, readingTitle string) (*models.Devotional, error)
	// Ask answers a reader's question with the day's reading as context
	Ask(ctx context.Context, question, readingTitle string) (string, error)
}

// Cache stores devotionals by date
type Cache interface {
	Get(ctx context.Context, date string) (*models.Devotional, error)
	Put(ctx context.Context, d *models.Devotional) error
}
