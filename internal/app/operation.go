package app

import (
	"context"
	"fmt"

	"koharu-go/internal/koharu"
)

// OperationRecord tracks one mutating command in the history. Records start in
// memory with ID=0 and get their ID once persisted.
type OperationRecord struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

// NewOperationRecord creates an unpersisted record that will succeed unless told otherwise.
func NewOperationRecord(operation, parameters string) *OperationRecord {
	return &OperationRecord{
		Operation:  operation,
		Parameters: parameters,
		Status:     koharu.StatusSuccess,
	}
}

// Persisted returns true once the record has a history row.
func (op *OperationRecord) Persisted() bool {
	return op.ID != 0
}

// Settle derives the final status from the command's error.
func (op *OperationRecord) Settle(err error) {
	if err != nil {
		op.Status = koharu.StatusFailed
	}
}

// track records operation in the history around fn. History failures are
// logged rather than returned so they never mask the command's own outcome.
func (a *App) track(ctx context.Context, rec *OperationRecord, fn func() error) error {
	id, err := a.history.CreateOperation(ctx, a.runID, rec.Operation, rec.Parameters, a.clock.Now())
	if err != nil {
		a.logger.Warn("recording operation failed", "operation", rec.Operation, "error", err)
	} else {
		rec.ID = id
	}

	err = fn()
	if rec.Status == koharu.StatusSuccess {
		rec.Settle(err)
	}

	if rec.Persisted() {
		// A cancelled context must not stop the row from being closed.
		finishCtx := context.WithoutCancel(ctx)
		if ferr := a.history.FinishOperation(finishCtx, rec.ID, rec.Status, a.clock.Now()); ferr != nil {
			a.logger.Warn("finishing operation failed", "id", rec.ID, "error", ferr)
		}
	}
	a.logger.Info("operation finished", "operation", rec.Operation, "status", rec.Status)
	return err
}

func params(pairs ...any) string {
	s := ""
	for i := 0; i+1 < len(pairs); i += 2 {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%v=%v", pairs[i], pairs[i+1])
	}
	return s
}
