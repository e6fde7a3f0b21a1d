package koharu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Layout locates the project tree and the directory snapshots are written to.
type Layout struct {
	ProjectRoot string
	BackupDir   string
}

// ArchiveRecord describes one archive found in the backup directory.
// Records are computed on every listing and never cached.
type ArchiveRecord struct {
	Name      string
	Path      string
	Size      int64
	Type      string
	Timestamp string
}

// UnknownType is reported for archives without a readable manifest.
const UnknownType = "unknown"

// Catalog lists the archives in a backup directory.
type Catalog struct {
	dir      string
	archiver Archiver
	logger   Logger
}

// NewCatalog creates a Catalog over dir. archiver is used to peek manifests.
func NewCatalog(dir string, archiver Archiver, logger Logger) *Catalog {
	return &Catalog{dir: dir, archiver: archiver, logger: logger}
}

// Dir returns the backup directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Names returns the archive file names, newest first. Names are timestamp
// prefixed, so descending lexicographic order is recency order.
// A missing backup directory yields an empty list.
func (c *Catalog) Names() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ArchiveSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// List returns a record for every archive, newest first, reading each manifest.
func (c *Catalog) List(ctx context.Context) ([]ArchiveRecord, error) {
	names, err := c.Names()
	if err != nil {
		return nil, err
	}

	records := make([]ArchiveRecord, 0, len(names))
	for _, name := range names {
		p := filepath.Join(c.dir, name)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}

		rec := ArchiveRecord{Name: name, Path: p, Size: info.Size(), Type: UnknownType}
		m, err := c.Manifest(ctx, p)
		if err != nil {
			c.logger.Debug("manifest unreadable", "archive", name, "error", err)
		}
		if m != nil {
			if m.Type != "" {
				rec.Type = string(m.Type)
			}
			rec.Timestamp = m.Timestamp
		}
		records = append(records, rec)
	}
	return records, nil
}

// Latest returns the newest archive record, or nil when there are none.
func (c *Catalog) Latest(ctx context.Context) (*ArchiveRecord, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Manifest peeks manifest.json without unpacking the archive.
// Returns nil, nil when the archive carries no manifest.
func (c *Catalog) Manifest(ctx context.Context, archivePath string) (*Manifest, error) {
	data, err := c.archiver.ExtractFile(ctx, archivePath, ManifestName)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return DecodeManifest(data)
}
