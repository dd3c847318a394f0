package repository

import (
	"context"

	"ontheway/internal/database"
)

// SQLStore is the Store backed by a SQL database
type SQLStore struct {
	*UserRepository
	*ReadingRepository
	*PreferencesRepository
	*DevotionalRepository

	db *database.DB
}

// NewSQLStore wires the SQL repositories over db
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{
		UserRepository:        NewUserRepository(db),
		ReadingRepository:     NewReadingRepository(db),
		PreferencesRepository: NewPreferencesRepository(db),
		DevotionalRepository:  NewDevotionalRepository(db),
		db:                    db,
	}
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
