package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.log"})
		want := len(defaultIgnorePatterns) + 1
		if len(m.patterns) != want {
			t.Fatalf("expected %d patterns, got %d", want, len(m.patterns))
		}
		if last := m.patterns[len(m.patterns)-1].glob; last != "*.log" {
			t.Errorf("expected *.log, got %s", last)
		}
	})

	t.Run("parses pattern flags", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.log", "drafts/private", "cache/", "!keep.log", "/", "!"})
		got := m.patterns[len(defaultIgnorePatterns):]
		want := []ignorePattern{
			{glob: "*.log"},
			{glob: "drafts/private", anchored: true},
			{glob: "cache", dirOnly: true},
			{glob: "keep.log", negate: true},
		}
		if len(got) != len(want) {
			t.Fatalf("got %d patterns, want %d: %+v", len(got), len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("pattern %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name         string
		patterns     []string
		relativePath string
		isDir        bool
		want         bool
	}{
		{
			name:         "default pattern always applies",
			relativePath: filepath.Join("posts", ".DS_Store"),
			want:         true,
		},
		{
			name:         "basename glob matches file in subdirectory",
			patterns:     []string{"*.bak"},
			relativePath: filepath.Join("posts", "hello.md.bak"),
			want:         true,
		},
		{
			name:         "basename glob does not match different extension",
			patterns:     []string{"*.bak"},
			relativePath: "hello.md",
			want:         false,
		},
		{
			name:         "path pattern matches exact relative path",
			patterns:     []string{"drafts/private"},
			relativePath: filepath.Join("drafts", "private"),
			want:         true,
		},
		{
			name:         "path pattern does not match wrong path",
			patterns:     []string{"drafts/private"},
			relativePath: filepath.Join("posts", "private"),
			want:         false,
		},
		{
			name:         "character class",
			patterns:     []string{"*.[oa]"},
			relativePath: "main.o",
			want:         true,
		},
		{
			name:         "no configured patterns only uses defaults",
			relativePath: "anything.txt",
			want:         false,
		},
		{
			name:         "directory pattern matches directory",
			patterns:     []string{"drafts/"},
			relativePath: filepath.Join("posts", "drafts"),
			isDir:        true,
			want:         true,
		},
		{
			name:         "directory pattern skips file of same name",
			patterns:     []string{"drafts/"},
			relativePath: "drafts",
			want:         false,
		},
		{
			name:         "negation re-includes",
			patterns:     []string{"*.json", "!lqips.json"},
			relativePath: "lqips.json",
			want:         false,
		},
		{
			name:         "later pattern overrides negation",
			patterns:     []string{"!lqips.json", "*.json"},
			relativePath: "lqips.json",
			want:         true,
		},
		{
			name:         "malformed glob never matches",
			patterns:     []string{"[abc"},
			relativePath: "[abc",
			want:         false,
		},
		{
			name:         "empty string path",
			patterns:     []string{"*.log"},
			relativePath: "",
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			got := m.Match(tt.relativePath, tt.isDir)
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.relativePath, got, tt.want)
			}
		})
	}
}

func TestIgnoreMatcher_NilMatchesNothing(t *testing.T) {
	var m *IgnoreMatcher
	if m.Match(".DS_Store", false) {
		t.Error("nil matcher should match nothing")
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads patterns from file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, IgnoreFileName)
		content := "*.log\n# comment\n\n*.tmp\ndrafts/private\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}

		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(patterns) != 5 {
			t.Fatalf("expected 5 raw lines, got %d", len(patterns))
		}
	})

	t.Run("returns nil for missing file", func(t *testing.T) {
		t.Parallel()
		patterns, err := ParseIgnoreFile(filepath.Join(t.TempDir(), IgnoreFileName))
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("expected nil patterns, got %v", patterns)
		}
	})
}

func TestLoadIgnoreMatcher(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, IgnoreFileName), []byte("*.tmp\n"), 0644); err != nil {
		t.Fatalf("writing ignore file: %v", err)
	}

	m, err := LoadIgnoreMatcher(root, []string{"*.bak"})
	if err != nil {
		t.Fatalf("LoadIgnoreMatcher() error = %v", err)
	}
	for _, p := range []string{"a.tmp", "a.bak", ".DS_Store"} {
		if !m.Match(p, false) {
			t.Errorf("Match(%q) = false, want true", p)
		}
	}
	if m.Match("post.md", false) {
		t.Error("Match(post.md) = true, want false")
	}
}
