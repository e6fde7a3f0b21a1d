package database

import (
	"fmt"
	"os"
	"path/filepath"

	"koharu-go/internal/config"
	"koharu-go/internal/koharu"
)

// HistoryFileName is the database file created in data_dir.
const HistoryFileName = "history.db"

// NewHistoryFromConfig creates a History implementation based on the database config type.
func NewHistoryFromConfig(cfg config.DatabaseConfig) (koharu.History, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteHistory(filepath.Join(cfg.DataDir, HistoryFileName))
	case "memory":
		return NewSQLiteHistory(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
