// Package archive creates and reads snapshot archives by running the system tar.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"koharu-go/internal/koharu"
)

// TarArchiver implements koharu.Archiver on top of the tar binary.
type TarArchiver struct {
	bin string

	detect sync.Once
	gnu    bool
}

// NewTarArchiver returns an archiver that runs bin, or "tar" when bin is empty.
func NewTarArchiver(bin string) *TarArchiver {
	if bin == "" {
		bin = "tar"
	}
	return &TarArchiver{bin: bin}
}

// Create packs sourceDir re-rooted at "." into archivePath.
func (a *TarArchiver) Create(ctx context.Context, archivePath, sourceDir string) error {
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	_, err := a.run(ctx, "create", archivePath, "-czf", archivePath, "-C", sourceDir, ".")
	return err
}

// ExtractAll unpacks archivePath into destDir, creating it if needed.
func (a *TarArchiver) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating extraction directory: %w", err)
	}
	_, err := a.run(ctx, "extract", archivePath, "-xzf", archivePath, "-C", destDir)
	return err
}

// List returns the member names as tar reports them.
func (a *TarArchiver) List(ctx context.Context, archivePath string) ([]string, error) {
	args := []string{"-tzf", archivePath}
	if a.isGNU() {
		args = append([]string{"--quoting-style=literal"}, args...)
	}
	out, err := a.run(ctx, "list", archivePath, args...)
	if err != nil {
		return nil, err
	}
	var members []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			members = append(members, line)
		}
	}
	return members, nil
}

// ExtractFile writes one member to stdout and returns it. The member is matched
// after normalisation, so "manifest.json" finds "./manifest.json".
// A missing member returns nil, nil.
func (a *TarArchiver) ExtractFile(ctx context.Context, archivePath, member string) ([]byte, error) {
	members, err := a.List(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	want := koharu.NormalizeMember(member)
	stored := ""
	for _, m := range members {
		if koharu.NormalizeMember(m) == want && !strings.HasSuffix(m, "/") {
			stored = m
			break
		}
	}
	if stored == "" {
		return nil, nil
	}

	return a.run(ctx, "extract", archivePath, "-xzOf", archivePath, stored)
}

// isGNU reports whether bin is GNU tar, which escapes non-ASCII member names
// under a C locale unless told to quote literally.
func (a *TarArchiver) isGNU() bool {
	a.detect.Do(func() {
		out, err := exec.Command(a.bin, "--version").Output()
		a.gnu = err == nil && bytes.Contains(out, []byte("GNU tar"))
	})
	return a.gnu
}

func (a *TarArchiver) run(ctx context.Context, op, archivePath string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.bin, args...)
	if !a.isGNU() {
		// bsdtar has no quoting switch; a UTF-8 locale keeps names printable.
		cmd.Env = append(os.Environ(), "LC_ALL=C.UTF-8")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &koharu.ArchiveError{Op: op, Archive: archivePath, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}
