package testutil

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// MemoryArchiver stands in for the tar archiver when only listings and
// manifests matter. Each archive is a map of member names to contents. It
// cannot pack or unpack real directories.
type MemoryArchiver struct {
	mu        sync.Mutex
	Archives  map[string]map[string][]byte
	CreateErr error
}

func NewMemoryArchiver() *MemoryArchiver {
	return &MemoryArchiver{Archives: make(map[string]map[string][]byte)}
}

// Add registers an archive at path with the given members and writes its placeholder.
func (a *MemoryArchiver) Add(path string, members map[string][]byte) error {
	a.mu.Lock()
	a.Archives[path] = members
	a.mu.Unlock()
	return os.WriteFile(path, []byte("placeholder"), 0644)
}

func (a *MemoryArchiver) Create(ctx context.Context, archivePath, sourceDir string) error {
	if a.CreateErr != nil {
		return a.CreateErr
	}
	return errors.New("MemoryArchiver cannot pack directories")
}

func (a *MemoryArchiver) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	return errors.New("MemoryArchiver cannot extract")
}

func (a *MemoryArchiver) ExtractFile(ctx context.Context, archivePath, member string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	members, ok := a.Archives[archivePath]
	if !ok {
		return nil, errors.New("not an archive: " + archivePath)
	}
	for name, data := range members {
		if strings.TrimPrefix(name, "./") == member {
			return data, nil
		}
	}
	return nil, nil
}

func (a *MemoryArchiver) List(ctx context.Context, archivePath string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	members, ok := a.Archives[archivePath]
	if !ok {
		return nil, errors.New("not an archive: " + archivePath)
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	return names, nil
}
