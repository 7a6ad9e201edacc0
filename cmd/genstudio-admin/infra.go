package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openpalette/genstudio/config"
	"github.com/openpalette/genstudio/internal/bootstrap"
)

// connectDB opens the database for admin commands. Admin commands never need
// Redis; everything they touch lives in PostgreSQL.
func connectDB(logger *slog.Logger, cfg *config.AppConfig) (*sql.DB, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cfg.Postgres,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

func closeDB(logger *slog.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Error("close database failed", "error", err)
	}
}
