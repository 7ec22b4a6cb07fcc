package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"resto_pos_backend/internal/config"
	"resto_pos_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed schema.sql
var schemaSQL string

// InitDB opens the PostgreSQL pool and verifies connectivity.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s@%s:%s: %w", cfg.Name, cfg.Host, cfg.Port, err)
	}
	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"host": cfg.Host, "name": cfg.Name})

	if cfg.ApplySchema {
		if err := applySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// applySchema executes the embedded schema.sql. Every statement is idempotent.
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied successfully")
	return nil
}

// Schema exposes the embedded DDL, e.g. for tooling that prepares test databases.
func Schema() string {
	return schemaSQL
}
