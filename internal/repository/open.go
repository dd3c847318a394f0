package repository

import (
	"fmt"

	"ontheway/internal/config"
	"ontheway/internal/database"
)

// OpenStore returns the Store selected by DATABASE_TYPE. SQL stores are migrated before use.
func OpenStore(cfg *config.Config) (Store, error) {
	if cfg.DatabaseType == "local" {
		return NewLocalStore(cfg.LocalStorePath)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewSQLStore(db), nil
}
