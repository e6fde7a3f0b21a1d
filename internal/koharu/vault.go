package koharu

import (
	"context"
	"io"
)

// Vault stores snapshot archives off-site.
// Archives are addressed by file name; implementations must reject names that
// fail ValidateStoredName.
type Vault interface {
	// PutArchive stores size bytes read from r under name, replacing any previous copy.
	PutArchive(ctx context.Context, name string, r io.Reader, size int64) error

	// GetArchive writes the stored archive to w.
	GetArchive(ctx context.Context, name string, w io.Writer) error

	// ListArchives returns the stored names, newest first.
	ListArchives(ctx context.Context) ([]string, error)

	// ValidateSetup verifies that the vault is reachable and usable.
	ValidateSetup(ctx context.Context) error
}

// EncryptedSuffix is appended to archive names stored encrypted.
const EncryptedSuffix = ".age"

// ValidateStoredName checks a vault object name: an archive name, optionally encrypted.
func ValidateStoredName(name string) error {
	if len(name) > len(EncryptedSuffix) && name[len(name)-len(EncryptedSuffix):] == EncryptedSuffix {
		return ValidateArchiveName(name[:len(name)-len(EncryptedSuffix)])
	}
	return ValidateArchiveName(name)
}
