package koharu

import "context"

// Archiver creates and reads gzip-compressed tar archives.
// Implementations block until the underlying tool exits and report a non-zero
// exit as an *ArchiveError.
type Archiver interface {
	// Create packs the contents of sourceDir (re-rooted at ".") into archivePath.
	Create(ctx context.Context, archivePath, sourceDir string) error

	// ExtractAll unpacks the whole archive into destDir.
	ExtractAll(ctx context.Context, archivePath, destDir string) error

	// ExtractFile returns the contents of a single member.
	// A missing member is not an error: it returns nil, nil.
	ExtractFile(ctx context.Context, archivePath, member string) ([]byte, error)

	// List returns the member names stored in the archive.
	List(ctx context.Context, archivePath string) ([]string, error)
}
