package koharu

import (
	"context"
	"database/sql"
	"time"
)

// Operation statuses recorded in the history.
const (
	StatusRunning   = "running"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Operation is one row of the operation history.
type Operation struct {
	ID         int64
	RunID      string
	Operation  string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

// History records the mutating commands run against a project.
type History interface {
	CreateOperation(ctx context.Context, runID, operation, parameters string, startedAt time.Time) (int64, error)
	FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error

	// ListOperations returns up to limit operations, newest first.
	ListOperations(ctx context.Context, limit int) ([]Operation, error)

	Close() error
}
