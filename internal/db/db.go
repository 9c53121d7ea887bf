package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inboxpilot/internal/config"
	"inboxpilot/internal/flow"
	"inboxpilot/internal/store"
	"inboxpilot/internal/user"
)

var DB *gorm.DB

// Init opens Postgres when a DSN is configured, otherwise falls back to a
// local SQLite file, and migrates every persisted model.
func Init(cfg *config.Config) error {
	var (
		conn *gorm.DB
		err  error
	)
	if cfg.Postgres.DSN != "" {
		conn, err = gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	} else {
		path := cfg.SQLite.Path
		if path == "" {
			path = "inboxpilot.db"
		}
		conn, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		return err
	}

	// Auto-migrate user model
	if err := conn.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	// Auto-migrate task rows written by the flow integrator
	if err := conn.AutoMigrate(&flow.Task{}); err != nil {
		return err
	}

	// Auto-migrate agent memory snapshots
	if err := conn.AutoMigrate(&store.MemorySnapshot{}); err != nil {
		return err
	}

	DB = conn
	log.Printf("Database connected and migrated")
	return nil
}
