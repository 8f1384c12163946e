package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"dream_build_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Open connects to PostgreSQL, verifies the connection and applies the schema when a path is given.
func Open(dsn, schemaPath string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	utils.LogInfo("Successfully connected to the database")

	if err := applySchema(db, schemaPath); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// applySchema executes the schema script. Statements in it must be idempotent.
func applySchema(db *sql.DB, schemaPath string) error {
	if schemaPath == "" {
		utils.LogInfo("No schema path provided, skipping schema application")
		return nil
	}
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}
	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied", map[string]interface{}{"path": schemaPath})
	return nil
}
