package database

import (
	"fmt"
	"os"
	"path/filepath"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config type.
// The sqlite file is named after the instance so several instances can share a data dir.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, instanceID string, clock pulse.Clock) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return NewSQLiteDatabase(SQLitePath(cfg, instanceID), clock)
	case "memory":
		return NewSQLiteDatabase(":memory:", clock)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// SQLitePath is where a sqlite database of instanceID lives under cfg.DataDir.
func SQLitePath(cfg config.DatabaseConfig, instanceID string) string {
	return filepath.Join(cfg.DataDir, instanceID+".db")
}
