package koharu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kfs "koharu-go/internal/fs"
)

// RestoreManager lists snapshots and places their contents back into the project tree.
type RestoreManager struct {
	layout   Layout
	entries  []RestoreEntry
	archiver Archiver
	catalog  *Catalog
	logger   Logger
}

// NewRestoreManager creates a RestoreManager. The restore mapping is derived from items.
func NewRestoreManager(layout Layout, items []Item, archiver Archiver, logger Logger) *RestoreManager {
	return &RestoreManager{
		layout:   layout,
		entries:  RestoreEntries(items),
		archiver: archiver,
		catalog:  NewCatalog(layout.BackupDir, archiver, logger),
		logger:   logger,
	}
}

// List returns every archive in the backup directory, newest first.
func (m *RestoreManager) List(ctx context.Context) ([]ArchiveRecord, error) {
	return m.catalog.List(ctx)
}

// Latest returns the newest archive, or nil when the backup directory is empty.
func (m *RestoreManager) Latest(ctx context.Context) (*ArchiveRecord, error) {
	return m.catalog.Latest(ctx)
}

// ReadManifest returns the manifest of archivePath, or nil if it has none.
func (m *RestoreManager) ReadManifest(ctx context.Context, archivePath string) (*Manifest, error) {
	return m.catalog.Manifest(ctx, archivePath)
}

// Preview returns the project-relative paths a restore of archivePath would write,
// in archive order and without duplicates. It only reads the archive listing.
func (m *RestoreManager) Preview(ctx context.Context, archivePath string) ([]string, error) {
	members, err := m.archiver.List(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	var targets []string
	seen := make(map[string]bool)
	for _, member := range members {
		name := NormalizeMember(member)
		if name == "" || name == ManifestName {
			continue
		}
		if !IsSafe(name, "") {
			return nil, &ValidationError{Field: "archive member", Value: member, Reason: "unsafe path"}
		}
		target, ok := MapMember(m.entries, name)
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	return targets, nil
}

// Apply extracts archivePath into a private temporary directory and copies every
// mapped entry present in it over the live project tree. Existing files are
// overwritten. Returns the project-relative targets that were written.
func (m *RestoreManager) Apply(ctx context.Context, archivePath string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "koharu-restore-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			m.logger.Warn("removing temporary directory failed", "path", tmpDir, "error", err)
		}
	}()

	m.logger.Info("restore started", "archive", archivePath)
	if err := m.archiver.ExtractAll(ctx, archivePath, tmpDir); err != nil {
		return nil, err
	}

	var restored []string
	for _, e := range m.entries {
		if err := ctx.Err(); err != nil {
			return restored, err
		}
		if !IsSafe(e.Target, m.layout.ProjectRoot) {
			return restored, &ValidationError{Field: "restore target", Value: e.Target, Reason: "unsafe path"}
		}

		src := filepath.Join(tmpDir, filepath.FromSlash(e.ArchivePath))
		exists, err := kfs.Exists(src)
		if err != nil {
			return restored, err
		}
		if !exists {
			continue
		}

		dst := filepath.Join(m.layout.ProjectRoot, filepath.FromSlash(e.Target))
		n, err := kfs.CopyTree(src, dst, nil)
		if err != nil {
			return restored, fmt.Errorf("restoring %s: %w", e.Target, err)
		}
		m.logger.Debug("entry restored", "target", e.Target, "files", n)
		restored = append(restored, e.Target)
	}

	m.logger.Info("restore complete", "archive", archivePath, "entries", len(restored))
	return restored, nil
}
