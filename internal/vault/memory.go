package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"koharu-go/internal/koharu"
)

// MemoryVault keeps archives in memory. Useful for tests.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name     string
	archives map[string][]byte
	mu       sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{name: name, archives: make(map[string][]byte)}
}

// PutArchive stores an archive, replacing any previous copy.
func (m *MemoryVault) PutArchive(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := koharu.ValidateStoredName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[name] = data
	return nil
}

// GetArchive writes a stored archive to w.
func (m *MemoryVault) GetArchive(ctx context.Context, name string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.archives[name]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("archive not found: %s", name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// ListArchives returns stored names, newest first.
func (m *MemoryVault) ListArchives(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.archives))
	for name := range m.archives {
		names = append(names, name)
	}
	sortNewestFirst(names)
	return names, nil
}

// ValidateSetup always succeeds.
func (m *MemoryVault) ValidateSetup(ctx context.Context) error {
	return nil
}

var _ koharu.Vault = (*MemoryVault)(nil)
