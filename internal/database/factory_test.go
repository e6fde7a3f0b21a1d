package database

import (
	"os"
	"path/filepath"
	"testing"

	"koharu-go/internal/config"
)

func TestNewHistoryFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		got, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() unexpected error: %v", err)
		}
		got.Close()
	})

	t.Run("sqlite database creates data_dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "db")
		got, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dir})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() unexpected error: %v", err)
		}
		defer got.Close()

		if _, err := os.Stat(filepath.Join(dir, HistoryFileName)); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})

	t.Run("sqlite database without data_dir", func(t *testing.T) {
		if _, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite"}); err == nil {
			t.Error("NewHistoryFromConfig() expected error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("NewHistoryFromConfig() expected error")
		}
	})
}
