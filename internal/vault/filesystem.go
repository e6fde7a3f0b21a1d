package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"koharu-go/internal/koharu"
)

// FileSystemVault stores archives as files, typically on a mounted network
// share or removable drive:
//
//	<root>/
//	  archives/
//	    backup-2024-01-15-10-30-00.tar.gz[.age]
type FileSystemVault struct {
	name       string
	root       string
	archiveDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	archiveDir := filepath.Join(root, "archives")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileSystemVault{name: name, root: root, archiveDir: archiveDir}, nil
}

// PutArchive stores an archive using an atomic write, replacing any previous copy.
func (v *FileSystemVault) PutArchive(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := koharu.ValidateStoredName(name); err != nil {
		return err
	}
	return v.writeFile(filepath.Join(v.archiveDir, name), r, size)
}

// GetArchive writes a stored archive to w.
func (v *FileSystemVault) GetArchive(ctx context.Context, name string, w io.Writer) error {
	if err := koharu.ValidateStoredName(name); err != nil {
		return err
	}
	f, err := os.Open(filepath.Join(v.archiveDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("archive not found: %s", name)
		}
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	return nil
}

// ListArchives returns stored names, newest first. Temp files and anything
// that is not an archive are ignored.
func (v *FileSystemVault) ListArchives(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(v.archiveDir)
	if err != nil {
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || koharu.ValidateStoredName(e.Name()) != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sortNewestFirst(names)
	return names, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup(ctx context.Context) error {
	for _, dir := range []string{v.root, v.archiveDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes data from r to destPath using a temp file and rename.
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

var _ koharu.Vault = (*FileSystemVault)(nil)
