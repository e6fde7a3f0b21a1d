package koharu

import (
	"os"
	"path/filepath"
	"strings"
)

// ArchiveSuffix is the extension every snapshot archive carries.
const ArchiveSuffix = ".tar.gz"

// IsSafe reports whether candidate, interpreted relative to root, stays inside root.
// Absolute candidates, empty candidates and anything whose cleaned form climbs
// out through ".." are rejected.
func IsSafe(candidate, root string) bool {
	if candidate == "" {
		return false
	}
	if filepath.IsAbs(candidate) || strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, `\`) {
		return false
	}
	if filepath.VolumeName(candidate) != "" {
		return false
	}

	cleaned := filepath.Clean(filepath.FromSlash(candidate))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return false
	}

	if root == "" {
		return true
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Join(root, cleaned))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidateArchiveName checks a bare archive file name such as one received from a vault.
func ValidateArchiveName(name string) error {
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return &ValidationError{Field: "archive name", Value: name, Reason: "must be a file name without directories"}
	}
	if !IsSafe(name, "") || name == "." {
		return &ValidationError{Field: "archive name", Value: name, Reason: "unsafe path"}
	}
	if !strings.HasSuffix(name, ArchiveSuffix) || len(name) == len(ArchiveSuffix) {
		return &ValidationError{Field: "archive name", Value: name, Reason: "must end in " + ArchiveSuffix}
	}
	return nil
}

// ResolveArchivePath turns a user supplied archive reference into an absolute path
// inside backupDir. A bare name is looked up in backupDir; anything else is resolved
// against the working directory and must still land inside backupDir.
func ResolveArchivePath(backupDir, raw string) (string, error) {
	if raw == "" {
		return "", &ValidationError{Field: "archive", Reason: "no archive given"}
	}

	absDir, err := filepath.Abs(backupDir)
	if err != nil {
		return "", &ValidationError{Field: "backup directory", Value: backupDir, Reason: err.Error()}
	}

	var candidate string
	if raw == filepath.Base(raw) {
		if err := ValidateArchiveName(raw); err != nil {
			return "", err
		}
		candidate = filepath.Join(absDir, raw)
	} else {
		candidate, err = filepath.Abs(raw)
		if err != nil {
			return "", &ValidationError{Field: "archive", Value: raw, Reason: err.Error()}
		}
		rel, err := filepath.Rel(absDir, candidate)
		if err != nil || !IsSafe(rel, absDir) || rel != filepath.Base(rel) {
			return "", &ValidationError{Field: "archive", Value: raw, Reason: "not inside the backup directory"}
		}
		if err := ValidateArchiveName(rel); err != nil {
			return "", err
		}
	}

	info, err := os.Stat(candidate)
	if err != nil {
		return "", &ValidationError{Field: "archive", Value: raw, Reason: "file does not exist"}
	}
	if !info.Mode().IsRegular() {
		return "", &ValidationError{Field: "archive", Value: raw, Reason: "not a regular file"}
	}
	return candidate, nil
}
