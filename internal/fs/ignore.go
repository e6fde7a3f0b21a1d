package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-project file listing extra copy exclusions.
const IgnoreFileName = ".koharuignore"

// defaultIgnorePatterns are always applied regardless of config or .koharuignore.
var defaultIgnorePatterns = []string{".DS_Store", "Thumbs.db"}

// ignorePattern is one parsed line of an ignore list.
type ignorePattern struct {
	glob     string
	anchored bool // contains '/': matched against the relative path
	dirOnly  bool // trailing '/': matches directories only
	negate   bool // leading '!': re-includes what an earlier pattern excluded
}

// IgnoreMatcher decides which entries are left out when content is copied.
// Patterns without '/' match the basename, patterns with '/' the path relative
// to the copy root. A trailing '/' restricts a pattern to directories and a
// leading '!' re-includes an entry. The last matching pattern wins.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings plus the defaults.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range append(append([]string{}, defaultIgnorePatterns...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		var p ignorePattern
		if strings.HasPrefix(raw, "!") {
			p.negate = true
			raw = raw[1:]
		}
		if strings.HasSuffix(raw, "/") {
			p.dirOnly = true
			raw = strings.TrimRight(raw, "/")
		}
		raw = strings.TrimPrefix(raw, "/")
		if raw == "" {
			continue
		}
		p.glob = raw
		p.anchored = strings.Contains(raw, "/")
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the entry at relativePath should be skipped. A nil
// matcher matches nothing.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	if m == nil {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := path.Base(normalized)

	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		subject := basename
		if p.anchored {
			subject = normalized
		}
		// Malformed globs never match.
		if ok, err := path.Match(p.glob, subject); err == nil && ok {
			ignored = !p.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads a .koharuignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}

// LoadIgnoreMatcher combines configured patterns with the project's .koharuignore.
func LoadIgnoreMatcher(projectRoot string, configured []string) (*IgnoreMatcher, error) {
	fromFile, err := ParseIgnoreFile(filepath.Join(projectRoot, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	return NewIgnoreMatcher(append(append([]string{}, configured...), fromFile...)), nil
}
