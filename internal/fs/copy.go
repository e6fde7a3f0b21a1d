package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether path exists (without following a trailing symlink).
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// CopyTree copies src to dst. A regular file is copied as a file; a directory is
// copied recursively, merging into dst if it already exists and overwriting any
// file of the same name. Symlinks are recreated, not followed. Entries matched by
// ignore (relative to src) are skipped. Returns the number of files written.
func CopyTree(src, dst string, ignore *IgnoreMatcher) (int, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	if !info.IsDir() {
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return 0, fmt.Errorf("creating parent directory: %w", err)
		}
		if err := copyEntry(src, dst, info); err != nil {
			return 0, err
		}
		return 1, nil
	}

	count := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return fmt.Errorf("computing relative path: %w", err)
		}
		if rel != "." && ignore.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		entryInfo, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		if d.IsDir() {
			if err := os.MkdirAll(target, entryInfo.Mode().Perm()|0700); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			return nil
		}

		if err := copyEntry(p, target, entryInfo); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("copying %s: %w", src, err)
	}
	return count, nil
}

// copyEntry copies one non-directory entry.
func copyEntry(src, dst string, info fs.FileInfo) error {
	mode := info.Mode()

	switch {
	case mode&os.ModeSymlink != 0:
		link, err := os.Readlink(src)
		if err != nil {
			return fmt.Errorf("reading symlink %s: %w", src, err)
		}
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("replacing %s: %w", dst, err)
		}
		if err := os.Symlink(link, dst); err != nil {
			return fmt.Errorf("creating symlink %s: %w", dst, err)
		}
		return nil
	case !mode.IsRegular():
		// Devices, sockets and pipes have no content worth snapshotting.
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	if err := os.Chmod(dst, mode.Perm()); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", dst, err)
	}
	return nil
}
