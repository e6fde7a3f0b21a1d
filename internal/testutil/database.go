package testutil

import (
	"testing"

	"koharu-go/internal/database"
	"koharu-go/internal/koharu"
)

// NewTestHistory opens a migrated in-memory history, closed when the test ends.
func NewTestHistory(t *testing.T) koharu.History {
	t.Helper()

	h, err := database.NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}
