package koharu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kfs "koharu-go/internal/fs"
)

// timestampLayout renders archive timestamps; the result sorts chronologically.
const timestampLayout = "2006-01-02-15-04-05"

// ItemResult records what happened to one item during a backup run.
type ItemResult struct {
	Item    Item
	Copied  bool
	Skipped bool  // source did not exist
	Err     error // copy failed part way
}

// BackupResult is returned by a completed backup run.
type BackupResult struct {
	Name        string
	ArchivePath string
	Type        BackupType
	Size        int64
	Manifest    *Manifest
	Items       []ItemResult
}

// Copied returns the number of items that made it into the archive.
func (r *BackupResult) Copied() int {
	n := 0
	for _, it := range r.Items {
		if it.Copied {
			n++
		}
	}
	return n
}

// MissingRequired returns the required items whose source was absent or failed to copy.
func (r *BackupResult) MissingRequired() []Item {
	var missing []Item
	for _, it := range r.Items {
		if it.Item.Required && !it.Copied {
			missing = append(missing, it.Item)
		}
	}
	return missing
}

// BackupManager snapshots the content table into timestamped archives.
//
// The staging directory is derived from the archive name inside the backup
// directory, so two backups started in the same second by separate processes
// would share it. The tool assumes a single running instance.
type BackupManager struct {
	layout   Layout
	items    []Item
	archiver Archiver
	ignore   *kfs.IgnoreMatcher
	logger   Logger
	clock    Clock
}

// NewBackupManager creates a BackupManager. ignore may be nil.
func NewBackupManager(layout Layout, items []Item, archiver Archiver, ignore *kfs.IgnoreMatcher, logger Logger, clock Clock) *BackupManager {
	return &BackupManager{
		layout:   layout,
		items:    items,
		archiver: archiver,
		ignore:   ignore,
		logger:   logger,
		clock:    clock,
	}
}

// Run copies the selected items into a fresh staging directory, writes the
// manifest, packs the archive and removes the staging directory.
//
// A missing source is recorded as a skip, required or not. If a later step
// fails the staging directory is left in place for inspection; the next run
// with the same name clears it.
func (m *BackupManager) Run(ctx context.Context, full bool) (*BackupResult, error) {
	if err := ValidateItems(m.items); err != nil {
		return nil, err
	}

	now := m.clock.Now().UTC()
	timestamp := now.Format(timestampLayout)
	name := "backup-" + timestamp
	archivePath := filepath.Join(m.layout.BackupDir, name+ArchiveSuffix)
	stagingDir := filepath.Join(m.layout.BackupDir, ".tmp-"+name)

	if err := os.MkdirAll(m.layout.BackupDir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}
	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, fmt.Errorf("clearing staging directory: %w", err)
	}
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	m.logger.Info("backup started", "name", name, "full", full)

	selected := SelectItems(m.items, full)
	results := make([]ItemResult, 0, len(selected))
	files := make(map[string]bool, len(selected))

	for _, it := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := m.copyItem(it, stagingDir)
		results = append(results, res)
		files[it.Dest] = res.Copied
	}

	manifest := &Manifest{
		Name:      ManifestLabel,
		Version:   ProjectVersion(m.layout.ProjectRoot),
		Type:      TypeFor(full),
		Timestamp: timestamp,
		CreatedAt: now.Format(time.RFC3339),
		Files:     files,
	}
	if err := WriteManifest(stagingDir, manifest); err != nil {
		return nil, err
	}

	if err := m.archiver.Create(ctx, archivePath, stagingDir); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(stagingDir); err != nil {
		m.logger.Warn("removing staging directory failed", "path", stagingDir, "error", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	result := &BackupResult{
		Name:        name + ArchiveSuffix,
		ArchivePath: archivePath,
		Type:        manifest.Type,
		Size:        info.Size(),
		Manifest:    manifest,
		Items:       results,
	}
	for _, it := range result.MissingRequired() {
		m.logger.Warn("required item missing from backup", "label", it.Label, "source", it.Source)
	}
	m.logger.Info("backup complete", "archive", archivePath, "copied", result.Copied(), "size", info.Size())
	return result, nil
}

// copyItem copies one item into the staging tree and reports the outcome.
func (m *BackupManager) copyItem(it Item, stagingDir string) ItemResult {
	src := filepath.Join(m.layout.ProjectRoot, filepath.FromSlash(it.Source))
	dst := filepath.Join(stagingDir, filepath.FromSlash(it.Dest))

	exists, err := kfs.Exists(src)
	if err != nil {
		m.logger.Error("checking item source failed", "source", it.Source, "error", err)
		return ItemResult{Item: it, Err: err}
	}
	if !exists {
		m.logger.Info("item skipped", "label", it.Label, "source", it.Source)
		return ItemResult{Item: it, Skipped: true}
	}

	n, err := kfs.CopyTree(src, dst, m.ignore)
	if err != nil {
		m.logger.Error("copying item failed", "source", it.Source, "error", err)
		return ItemResult{Item: it, Err: err}
	}
	m.logger.Debug("item copied", "label", it.Label, "files", n)
	return ItemResult{Item: it, Copied: true}
}
