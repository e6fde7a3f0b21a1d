package koharu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// CleanResult lists the archive names kept and deleted by a retention pass.
type CleanResult struct {
	Kept    []string
	Deleted []string
}

// RetentionManager prunes old archives from the backup directory.
type RetentionManager struct {
	catalog *Catalog
	logger  Logger
}

// NewRetentionManager creates a RetentionManager over backupDir.
func NewRetentionManager(backupDir string, archiver Archiver, logger Logger) *RetentionManager {
	return &RetentionManager{catalog: NewCatalog(backupDir, archiver, logger), logger: logger}
}

// ValidateKeep rejects retention counts below one.
func ValidateKeep(keep int) error {
	if keep <= 0 {
		return &ValidationError{Field: "keep", Value: strconv.Itoa(keep), Reason: "must be a positive integer"}
	}
	return nil
}

// Plan reports what Clean would do without deleting anything.
func (m *RetentionManager) Plan(keep int) (*CleanResult, error) {
	if err := ValidateKeep(keep); err != nil {
		return nil, err
	}
	names, err := m.catalog.Names()
	if err != nil {
		return nil, err
	}
	res := &CleanResult{}
	if len(names) <= keep {
		res.Kept = names
		return res, nil
	}
	res.Kept = names[:keep]
	res.Deleted = names[keep:]
	return res, nil
}

// Clean keeps the newest keep archives and deletes the rest.
// keep must be positive; the check happens before the directory is read.
func (m *RetentionManager) Clean(ctx context.Context, keep int) (*CleanResult, error) {
	plan, err := m.Plan(keep)
	if err != nil {
		return nil, err
	}

	res := &CleanResult{Kept: plan.Kept}
	for _, name := range plan.Deleted {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := os.Remove(filepath.Join(m.catalog.Dir(), name)); err != nil {
			return res, fmt.Errorf("deleting %s: %w", name, err)
		}
		m.logger.Info("archive deleted", "name", name)
		res.Deleted = append(res.Deleted, name)
	}
	return res, nil
}
