package devotional

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ontheway/internal/models"
	"ontheway/internal/repository"
)

// StoreCache exposes a repository.DevotionalStore as a Cache
type StoreCache struct {
	store repository.DevotionalStore
}

// NewStoreCache wraps store
func NewStoreCache(store repository.DevotionalStore) *StoreCache {
	return &StoreCache{store: store}
}

// Get returns the stored devotional or ErrCacheMiss
func (c *StoreCache) Get(ctx context.Context, date string) (*models.Devotional, error) {
	d, err := c.store.GetDevotional(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCacheMiss
	}
	return d, err
}

// Put stores d, keeping any earlier devotional for the date
func (c *StoreCache) Put(ctx context.Context, d *models.Devotional) error {
	return c.store.PutDevotional(ctx, d)
}

// TieredCache reads tiers in order and backfills the faster tiers on a hit.
// Tier errors other than a miss are logged and treated as a miss.
type TieredCache struct {
	tiers  []Cache
	logger *zap.Logger
}

// NewTieredCache orders tiers fastest first
func NewTieredCache(logger *zap.Logger, tiers ...Cache) *TieredCache {
	return &TieredCache{tiers: tiers, logger: logger}
}

// Get returns the first hit across tiers
func (c *TieredCache) Get(ctx context.Context, date string) (*models.Devotional, error) {
	for i, tier := range c.tiers {
		d, err := tier.Get(ctx, date)
		if err == nil {
			for _, upper := range c.tiers[:i] {
				if err := upper.Put(ctx, d); err != nil {
					c.logger.Warn("devotional cache backfill failed", zap.String("date", date), zap.Error(err))
				}
			}
			return d, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("devotional cache tier failed", zap.Int("tier", i), zap.String("date", date), zap.Error(err))
		}
	}
	return nil, ErrCacheMiss
}

// Put writes d to the last tier, which decides the version kept for the
// date, then fills the faster tiers with whatever that tier holds. Only a
// failure of the last tier is returned.
func (c *TieredCache) Put(ctx context.Context, d *models.Devotional) error {
	if len(c.tiers) == 0 {
		return nil
	}
	last := len(c.tiers) - 1
	authority := c.tiers[last]
	if err := authority.Put(ctx, d); err != nil {
		return err
	}

	stored, err := authority.Get(ctx, d.Date)
	if err != nil {
		c.logger.Warn("devotional read-back failed", zap.String("date", d.Date), zap.Error(err))
		return nil
	}
	for i, tier := range c.tiers[:last] {
		if err := tier.Put(ctx, stored); err != nil {
			c.logger.Warn("devotional cache write failed", zap.Int("tier", i), zap.String("date", d.Date), zap.Error(err))
		}
	}
	return nil
}
